package queue

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormatLine(t *testing.T) {
	ev := ReservationEvent{
		Type:           EventStatusChanged,
		ReservationID:  42,
		RoomID:         3,
		RoomName:       "Deluxe Twin",
		UserName:       "maria",
		Status:         "confirmed",
		PreviousStatus: "pending",
		CheckIn:        "2024-01-10",
		CheckOut:       "2024-01-12",
		Source:         "staff",
		OccurredAt:     time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC),
	}
	got := FormatLine(ev)
	want := `[2024-01-09T08:30:00Z] reservation.status_changed | reservation_id=42 | room_id=3 | room="Deluxe Twin" | user="maria" | stay=2024-01-10..2024-01-12 | status="pending"->"confirmed" | source=staff` + "\n"
	if got != want {
		t.Fatalf("FormatLine:\n got %s\nwant %s", got, want)
	}
}

func TestConsumerHandle(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	var buf bytes.Buffer
	c := NewConsumer("amqp://unused", "reservation.events", &buf, log)

	body := []byte(`{"type":"payment.recorded","reservation_id":7,"room_id":1,"user_name":"ana","status":"pending","check_in":"2024-02-01","check_out":"2024-02-03","amount":1500,"occurred_at":"2024-01-31T10:00:00Z"}`)
	if err := c.Handle(body); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "payment.recorded | reservation_id=7") || !strings.Contains(line, "amount=1500.00") {
		t.Fatalf("unexpected line %q", line)
	}

	if err := c.Handle([]byte("{not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
