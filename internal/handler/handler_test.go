package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/booking/bookingtest"
	"github.com/iliyamo/inn-reservation/internal/handler"
	"github.com/iliyamo/inn-reservation/internal/logging"
	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/router"
)

var t0 = time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type api struct {
	e     *echo.Echo
	store *bookingtest.Store
	clock *bookingtest.Clock
}

func newAPI(t *testing.T) *api {
	t.Helper()
	a := &api{store: bookingtest.NewStore(), clock: bookingtest.NewClock(t0)}
	log := logging.Discard()
	svc := booking.NewService(booking.Options{
		Rooms:        a.store.Rooms(),
		Reservations: a.store.Reservations(),
		Payments:     a.store.Payments(),
		Customers:    a.store.Customers(),
		Locker:       booking.NewLocalLocker(time.Second),
		Clock:        a.clock,
		Location:     time.UTC,
		Logger:       log,
	})
	a.e = echo.New()
	a.e.Validator = handler.NewValidator()
	a.e.HTTPErrorHandler = handler.ErrorHandler(log)
	router.RegisterRoutes(a.e, router.Handlers{
		Health:    handler.NewHealthHandler(pinger{}, false, false),
		Bookings:  handler.NewBookingHandler(svc, log),
		Rooms:     handler.NewRoomHandler(svc),
		Payments:  handler.NewPaymentHandler(svc),
		Dashboard: handler.NewDashboardHandler(svc),
		Customers: handler.NewCustomerHandler(svc),
	}, router.Middleware{})
	return a
}

func (a *api) do(t *testing.T, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	out := map[string]interface{}{}
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: bad JSON %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func (a *api) room(name string, units int) model.Room {
	return a.store.AddRoom(model.Room{Name: name, Capacity: 2, PriceCents: 250000, Available: units, Status: "available"})
}

func (a *api) reservation(room model.Room, user, in, out string, st model.ReservationStatus, created time.Time) model.Reservation {
	d := func(s string) model.Date {
		v, err := model.ParseDate(s, time.UTC)
		if err != nil {
			panic(err)
		}
		return v
	}
	return a.store.AddReservation(model.Reservation{
		UserName: user, RoomID: room.ID, CheckIn: d(in), CheckOut: d(out),
		GuestCount: 1, TotalAmount: 5000, Status: st, CreatedAt: created,
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	a := newAPI(t)
	room := a.room("Garden Suite", 2)
	r := a.reservation(room, "ana", "2024-02-01", "2024-02-04", model.StatusConfirmed, t0)
	a.store.Pay(r.ID, 5000)

	code, body := a.do(t, http.MethodGet, "/v1/availability?room_name=garden%20suite&start=2024-02-03&end=2024-02-05", "")
	if code != http.StatusOK {
		t.Fatalf("status %d: %v", code, body)
	}
	if body["capacity"] != 2.0 || body["reserved"] != 1.0 || body["available"] != 1.0 || body["isAvailable"] != true {
		t.Fatalf("unexpected availability %v", body)
	}

	code, body = a.do(t, http.MethodGet, "/v1/availability?room_name=Garden%20Suite&start=2024-02-04&end=2024-02-05", "")
	if code != http.StatusOK || body["reserved"] != 0.0 {
		t.Fatalf("check-out day must be free: %d %v", code, body)
	}
}

func TestAvailabilityRejectsBadQueries(t *testing.T) {
	a := newAPI(t)
	a.room("Loft", 1)

	cases := []struct {
		query string
		code  int
		msg   string
	}{
		{"room_name=Loft&end=2024-02-05", http.StatusBadRequest, "start is required"},
		{"start=2024-02-01&end=2024-02-05", http.StatusBadRequest, "room_name or room_id is required"},
		{"room_name=Loft&start=tomorrow&end=2024-02-05", http.StatusBadRequest, ""},
		{"room_name=Loft&start=2024-02-05&end=2024-02-05", http.StatusBadRequest, "check_out must be after check_in"},
		{"room_name=Attic&start=2024-02-01&end=2024-02-05", http.StatusNotFound, "room Attic not found"},
	}
	for _, tc := range cases {
		code, body := a.do(t, http.MethodGet, "/v1/availability?"+tc.query, "")
		if code != tc.code {
			t.Errorf("%s: status %d, want %d (%v)", tc.query, code, tc.code, body)
			continue
		}
		if _, ok := body["error"].(string); !ok {
			t.Errorf("%s: no error message in %v", tc.query, body)
		}
		if tc.msg != "" && body["error"] != tc.msg {
			t.Errorf("%s: error %q, want %q", tc.query, body["error"], tc.msg)
		}
	}
}

func TestCreateBooking(t *testing.T) {
	a := newAPI(t)
	room := a.room("Loft", 1)

	req := `{"user_name":"ana","room_name":"Loft","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":2,"total_amount":5000}`
	code, body := a.do(t, http.MethodPost, "/v1/bookings", req)
	if code != http.StatusCreated {
		t.Fatalf("status %d: %v", code, body)
	}
	if body["status"] != "pending" || body["room_id"] != float64(room.ID) || body["check_in"] != "2024-02-01" {
		t.Fatalf("unexpected reservation %v", body)
	}

	// Same guest retrying is not blocked by their own hold.
	if code, body = a.do(t, http.MethodPost, "/v1/bookings", req); code != http.StatusCreated {
		t.Fatalf("same-user retry: %d %v", code, body)
	}

	other := `{"user_name":"ben","room_id":` + jsonNum(room.ID) + `,"check_in":"2024-02-02","check_out":"2024-02-04","guest_count":1,"total_amount":2500}`
	code, body = a.do(t, http.MethodPost, "/v1/bookings", other)
	if code != http.StatusConflict || body["error"] != booking.MsgFullyBooked {
		t.Fatalf("other guest: %d %v", code, body)
	}

	a.clock.Advance(11 * time.Minute)
	if code, body = a.do(t, http.MethodPost, "/v1/bookings", other); code != http.StatusCreated {
		t.Fatalf("after hold expiry: %d %v", code, body)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	a := newAPI(t)
	a.room("Loft", 1)
	a.store.AddRoom(model.Room{Name: "Annex", Capacity: 2, PriceCents: 1000, Available: 3, Maintenance: true})

	cases := []struct {
		body string
		code int
		msg  string
	}{
		{`{"room_name":"Loft","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":1}`, http.StatusBadRequest, "user_name is required"},
		{`{"user_name":"ana","room_name":"Loft","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":0}`, http.StatusBadRequest, "guest_count must be at least 1"},
		{`{"user_name":"ana","room_name":"Loft","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":1}`, http.StatusBadRequest, "total_amount must be greater than 0"},
		{`{"user_name":"ana","room_name":"Loft","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":1,"total_amount":0}`, http.StatusBadRequest, "total_amount must be greater than 0"},
		{`{"user_name":"ana","room_name":"Loft","check_in":"2024-02-03","check_out":"2024-02-01","guest_count":1,"total_amount":100}`, http.StatusBadRequest, "check_out must be after check_in"},
		{`{"user_name":"ana","room_name":"Annex","check_in":"2024-02-01","check_out":"2024-02-03","guest_count":1,"total_amount":100}`, http.StatusConflict, booking.MsgRoomMaintenance},
		{`{"user_name":"ana","room_name":"Loft"`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tc := range cases {
		code, body := a.do(t, http.MethodPost, "/v1/bookings", tc.body)
		if code != tc.code || body["error"] != tc.msg {
			t.Errorf("%s: got %d %v, want %d %q", tc.body, code, body["error"], tc.code, tc.msg)
		}
	}
	if n := a.store.Count(); n != 0 {
		t.Fatalf("%d reservations stored after rejected requests", n)
	}
}

func TestStatusTransitions(t *testing.T) {
	a := newAPI(t)
	room := a.room("Loft", 1)
	r := a.reservation(room, "ana", "2024-02-01", "2024-02-03", model.StatusPending, t0)
	path := "/v1/bookings/" + jsonNum(r.ID) + "/status"

	code, body := a.do(t, http.MethodPut, path, `{"status":"Confirmed"}`)
	if code != http.StatusOK || body["status"] != "confirmed" {
		t.Fatalf("confirm: %d %v", code, body)
	}

	a.clock.Advance(21 * time.Minute)
	code, body = a.do(t, http.MethodPut, path, `{"status":"cancelled"}`)
	if code != http.StatusConflict || body["error"] != "Cancellation window expired (20 minutes after booking)" {
		t.Fatalf("late cancel: %d %v", code, body)
	}
	if got := a.store.Status(r.ID); got != model.StatusConfirmed {
		t.Fatalf("status changed to %q", got)
	}

	if code, body = a.do(t, http.MethodPut, path, `{"status":"archived"}`); code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d %v", code, body)
	}
	if code, body = a.do(t, http.MethodPut, path, `{}`); code != http.StatusBadRequest || body["error"] != "status is required" {
		t.Fatalf("missing status: %d %v", code, body)
	}
	if code, _ = a.do(t, http.MethodPut, "/v1/bookings/999/status", `{"status":"confirmed"}`); code != http.StatusNotFound {
		t.Fatalf("missing reservation: %d", code)
	}
	if code, _ = a.do(t, http.MethodPut, "/v1/bookings/abc/status", `{"status":"confirmed"}`); code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", code)
	}
}

func TestCheckoutIsIdempotent(t *testing.T) {
	a := newAPI(t)
	room := a.room("Loft", 1)
	unpaid := a.reservation(room, "ben", "2024-01-05", "2024-01-08", model.StatusConfirmed, t0.Add(-96*time.Hour))
	r := a.reservation(room, "ana", "2024-01-05", "2024-01-08", model.StatusConfirmed, t0.Add(-96*time.Hour))
	a.store.Pay(r.ID, 5000)

	path := "/v1/bookings/" + jsonNum(r.ID) + "/checkout"
	for i := 0; i < 2; i++ {
		code, body := a.do(t, http.MethodPost, path, "")
		if code != http.StatusOK || body["status"] != "checked out" {
			t.Fatalf("checkout #%d: %d %v", i+1, code, body)
		}
	}

	code, body := a.do(t, http.MethodPost, "/v1/bookings/"+jsonNum(unpaid.ID)+"/checkout", "")
	if code != http.StatusConflict || body["error"] != booking.MsgCheckoutUnpaid {
		t.Fatalf("unpaid checkout: %d %v", code, body)
	}
}

func TestAutoCheckoutAndNormalize(t *testing.T) {
	a := newAPI(t)
	room := a.room("Loft", 3)
	due := a.reservation(room, "ana", "2024-01-05", "2024-01-08", model.StatusConfirmed, t0.Add(-96*time.Hour))
	a.store.Pay(due.ID, 5000)
	a.reservation(room, "ben", "2024-01-05", "2024-01-08", model.StatusConfirmed, t0.Add(-96*time.Hour))

	code, body := a.do(t, http.MethodPost, "/v1/bookings/auto-checkout", "")
	if code != http.StatusOK || body["updated"] != 1.0 {
		t.Fatalf("auto-checkout: %d %v", code, body)
	}
	if _, body = a.do(t, http.MethodPost, "/v1/bookings/auto-checkout", ""); body["updated"] != 0.0 {
		t.Fatalf("second sweep: %v", body)
	}

	cancelled := a.reservation(room, "cy", "2024-02-01", "2024-02-02", model.StatusCancelled, t0)
	a.store.Pay(cancelled.ID, 100)
	code, body = a.do(t, http.MethodPost, "/v1/maintenance/normalize-reservations", "")
	if code != http.StatusOK || body["fixedCancelledToPending"] != 1.0 || body["fixedAutoCheckedOut"] != 0.0 {
		t.Fatalf("normalize: %d %v", code, body)
	}
	if got := a.store.Status(cancelled.ID); got != model.StatusPending {
		t.Fatalf("cancelled paid reservation is %q", got)
	}
}

func TestStoreFailureIs500(t *testing.T) {
	a := newAPI(t)
	a.room("Loft", 1)
	a.store.SetErr(errors.New("connection refused"))

	code, body := a.do(t, http.MethodGet, "/v1/availability?room_name=Loft&start=2024-02-01&end=2024-02-02", "")
	if code != http.StatusInternalServerError || body["error"] != "connection refused" {
		t.Fatalf("got %d %v", code, body)
	}
}

func TestBookingReadsAndEdits(t *testing.T) {
	a := newAPI(t)
	room := a.room("Loft", 2)
	r := a.reservation(room, "ana", "2024-02-01", "2024-02-03", model.StatusPending, t0)
	a.reservation(room, "ben", "2024-02-01", "2024-02-03", model.StatusPending, t0.Add(time.Minute))

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/customer/ana", nil))
	var list []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 || list[0]["user_name"] != "ana" {
		t.Fatalf("customer list: %d %s", rec.Code, rec.Body.String())
	}

	code, body := a.do(t, http.MethodPut, "/v1/bookings/"+jsonNum(r.ID), `{"special_requests":"late arrival","extra_beds":1}`)
	if code != http.StatusOK || body["special_requests"] != "late arrival" || body["extra_beds"] != 1.0 {
		t.Fatalf("update: %d %v", code, body)
	}
	if code, _ = a.do(t, http.MethodPut, "/v1/bookings/"+jsonNum(r.ID), `{}`); code != http.StatusBadRequest {
		t.Fatalf("empty update: %d", code)
	}
	if code, body = a.do(t, http.MethodGet, "/v1/bookings/"+jsonNum(r.ID), ""); code != http.StatusOK || body["id"] != float64(r.ID) {
		t.Fatalf("get: %d %v", code, body)
	}
}

func TestRoomsAndPayments(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(t, http.MethodPost, "/v1/rooms", `{"name":"Loft","capacity":2,"price_cents":250000,"available":2}`)
	if code != http.StatusCreated || body["status"] != "available" {
		t.Fatalf("create room: %d %v", code, body)
	}
	roomID := uint64(body["id"].(float64))
	if code, body = a.do(t, http.MethodPost, "/v1/rooms", `{"name":"loft","capacity":2,"price_cents":1,"available":1}`); code != http.StatusConflict {
		t.Fatalf("duplicate room: %d %v", code, body)
	}
	if code, body = a.do(t, http.MethodPost, "/v1/rooms", `{"name":"Cellar","capacity":2}`); code != http.StatusBadRequest || body["error"] != "price_cents must be greater than 0" {
		t.Fatalf("missing price: %d %v", code, body)
	}
	code, body = a.do(t, http.MethodPatch, "/v1/rooms/"+jsonNum(roomID), `{"maintenance":true}`)
	if code != http.StatusOK || body["maintenance"] != true || body["name"] != "Loft" {
		t.Fatalf("patch room: %d %v", code, body)
	}

	room, _ := a.store.Rooms().GetByID(context.Background(), roomID)
	r := a.reservation(*room, "ana", "2024-02-01", "2024-02-03", model.StatusPending, t0)

	code, body = a.do(t, http.MethodPost, "/v1/payments", `{"reservation_id":`+jsonNum(r.ID)+`,"amount":5000,"method":"GCash"}`)
	if code != http.StatusCreated || body["method"] != model.MethodEWallet || body["status"] != "completed" {
		t.Fatalf("record payment: %d %v", code, body)
	}
	if ref, _ := body["payment_reference"].(string); !strings.HasPrefix(ref, "PAY-") {
		t.Fatalf("payment reference %q", ref)
	}
	if got := a.store.Status(r.ID); got != model.StatusPending {
		t.Fatalf("payment changed reservation status to %q", got)
	}
	if code, body = a.do(t, http.MethodPost, "/v1/payments", `{"reservation_id":`+jsonNum(r.ID)+`,"amount":0,"method":"cash"}`); code != http.StatusBadRequest {
		t.Fatalf("zero payment: %d %v", code, body)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payments/reservation/"+jsonNum(r.ID), nil))
	var ps []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &ps); err != nil || len(ps) != 1 {
		t.Fatalf("payments list: %d %s", rec.Code, rec.Body.String())
	}

	if code, body = a.do(t, http.MethodDelete, "/v1/rooms/"+jsonNum(roomID), ""); code != http.StatusConflict {
		t.Fatalf("delete referenced room: %d %v", code, body)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(t, http.MethodGet, "/healthz", "")
	if code != http.StatusOK || body["database"] != "up" || body["redis"] != false {
		t.Fatalf("health: %d %v", code, body)
	}
	code, body = a.do(t, http.MethodGet, "/v1/nowhere", "")
	if code != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("unknown route: %d %v", code, body)
	}

	e := echo.New()
	e.GET("/healthz", handler.NewHealthHandler(pinger{err: errors.New("down")}, true, true).Health)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Fatalf("degraded health: %d %s", rec.Code, rec.Body.String())
	}
}

func jsonNum(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
