package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/srgjo27/smart_parking/internal/core/services"
	"github.com/srgjo27/smart_parking/internal/platform/metrics"
)

// Request is one tagged operation. Args holds the operation's named
// arguments as a JSON object.
type Request struct {
	Operation string          `json:"operation"`
	Args      json.RawMessage `json:"args"`
}

// Response is the envelope returned for every operation.
type Response struct {
	Succeeded bool        `json:"succeeded"`
	Payload   interface{} `json:"payload,omitempty"`
	Message   string      `json:"message"`
}

type operation func(ctx context.Context, args json.RawMessage) (interface{}, string, error)

type ParkingHandler struct {
	reservations *services.ReservationService
	sessions     *services.SessionService
	availability *services.AvailabilityService
	reports      *services.ReportService
	loc          *time.Location
	ops          map[string]operation
}

func NewParkingHandler(
	reservations *services.ReservationService,
	sessions *services.SessionService,
	availability *services.AvailabilityService,
	reports *services.ReportService,
	loc *time.Location,
) *ParkingHandler {
	if loc == nil {
		loc = time.Local
	}

	h := &ParkingHandler{
		reservations: reservations,
		sessions:     sessions,
		availability: availability,
		reports:      reports,
		loc:          loc,
	}

	h.ops = map[string]operation{
		"checkConflict":             h.checkConflict,
		"checkAvailabilityForOrder": h.checkAvailabilityForOrder,
		"addOrder":                  h.addOrder,
		"deleteOrder":               h.deleteOrder,
		"listReservations":          h.listReservations,
		"verifySubscriber":          h.verifySubscriber,
		"verifyTag":                 h.verifyTag,
		"enterWithReservation":      h.enterWithReservation,
		"enterWithoutReservation":   h.enterWithoutReservation,
		"extendSession":             h.extendSession,
		"collectVehicle":            h.collectVehicle,
		"getStatus":                 h.getStatus,
		"history":                   h.history,
		"resendParkingCode":         h.resendParkingCode,
		"stats":                     h.stats,
		"report":                    h.report,
	}

	return h
}

// Dispatch runs one operation and returns its envelope together with the
// HTTP status that fits the outcome.
func (h *ParkingHandler) Dispatch(ctx context.Context, req Request) (Response, int) {
	op, ok := h.ops[req.Operation]
	if !ok {
		metrics.OperationsTotal.WithLabelValues("unknown", domain.KindValidation.String()).Inc()
		return Response{Message: fmt.Sprintf("unknown operation %q", req.Operation)}, http.StatusBadRequest
	}

	payload, message, err := op(ctx, req.Args)
	if err != nil {
		kind := domain.KindOf(err)
		metrics.OperationsTotal.WithLabelValues(req.Operation, kind.String()).Inc()

		if kind == domain.KindTransient {
			logrus.WithField("operation", req.Operation).Errorf("Operation failed: %v", err)
		}

		return Response{Message: domain.PublicMessage(err)}, statusFor(kind)
	}

	metrics.OperationsTotal.WithLabelValues(req.Operation, "success").Inc()
	return Response{Succeeded: true, Payload: payload, Message: message}, http.StatusOK
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *ParkingHandler) HandleOperation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Message: "method not allowed"})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid json body"})
		return
	}

	resp, status := h.Dispatch(r.Context(), req)
	writeJSON(w, status, resp)
}

// HandleStats serves GET /lots/{lot}/stats for the dashboard.
func (h *ParkingHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	args, _ := json.Marshal(lotArgs{Lot: r.PathValue("lot")})

	resp, status := h.Dispatch(r.Context(), Request{Operation: "stats", Args: args})
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("failed to write response: %v", err)
	}
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return domain.ErrInvalidInput
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return domain.ErrInvalidInput
	}

	return nil
}

type subscriberArgs struct {
	SubscriberCode int64 `json:"subscriber_code"`
}

type arrivalArgs struct {
	SubscriberCode int64  `json:"subscriber_code"`
	Date           string `json:"date"`
	Time           string `json:"time"`
}

type orderArgs struct {
	OrderNumber int64 `json:"order_number"`
}

type tagArgs struct {
	TagID string `json:"tag_id"`
}

type parkingCodeArgs struct {
	SubscriberCode int64  `json:"subscriber_code"`
	ParkingCode    string `json:"parking_code"`
}

type lotArgs struct {
	Lot string `json:"lot"`
}

type monthArgs struct {
	Month    string `json:"month"`
	Generate bool   `json:"generate"`
}

func (h *ParkingHandler) arrival(args arrivalArgs) (time.Time, error) {
	return domain.ParseArrival(strings.TrimSpace(args.Date), strings.TrimSpace(args.Time), h.loc)
}

func (h *ParkingHandler) checkConflict(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args arrivalArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	arrival, err := h.arrival(args)
	if err != nil {
		return nil, "", err
	}

	conflict, err := h.reservations.CheckConflict(ctx, args.SubscriberCode, arrival)
	if err != nil {
		return nil, "", err
	}

	if conflict {
		return true, domain.ErrReservationConflict.Message, nil
	}
	return false, "no conflicting reservation", nil
}

func (h *ParkingHandler) checkAvailabilityForOrder(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args arrivalArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	arrival, err := h.arrival(args)
	if err != nil {
		return nil, "", err
	}

	available, err := h.reservations.CheckAvailabilityForOrder(ctx, arrival)
	if err != nil {
		return nil, "", err
	}

	if !available {
		return false, domain.ErrNoCapacity.Message, nil
	}
	return true, "spaces are available for the requested time", nil
}

func (h *ParkingHandler) addOrder(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args arrivalArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	arrival, err := h.arrival(args)
	if err != nil {
		return nil, "", err
	}

	order, err := h.reservations.AddOrder(ctx, args.SubscriberCode, arrival)
	if err != nil {
		return nil, "", err
	}

	return order, fmt.Sprintf("reservation %d confirmed, confirmation code %s", order.Number, order.ConfirmationCode), nil
}

func (h *ParkingHandler) deleteOrder(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args orderArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	if err := h.reservations.DeleteOrder(ctx, args.OrderNumber); err != nil {
		return nil, "", err
	}

	return true, "reservation cancelled", nil
}

func (h *ParkingHandler) listReservations(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args subscriberArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	orders, err := h.reservations.ListReservations(ctx, args.SubscriberCode)
	if err != nil {
		return nil, "", err
	}

	return orders, fmt.Sprintf("%d reservations", len(orders)), nil
}

func (h *ParkingHandler) verifySubscriber(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args subscriberArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	sub, err := h.sessions.VerifySubscriber(ctx, args.SubscriberCode)
	if err != nil {
		return nil, "", err
	}

	return sub, "subscriber verified", nil
}

func (h *ParkingHandler) verifyTag(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args tagArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	sub, err := h.sessions.VerifyByTag(ctx, args.TagID)
	if err != nil {
		return nil, "", err
	}

	return sub, "subscriber verified", nil
}

func (h *ParkingHandler) enterWithReservation(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var req services.EntryRequest
	if err := decode(raw, &req); err != nil {
		return nil, "", err
	}

	event, err := h.sessions.EnterWithReservation(ctx, req)
	if err != nil {
		return nil, "", err
	}

	return event, entryMessage(event), nil
}

func (h *ParkingHandler) enterWithoutReservation(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var req services.EntryRequest
	if err := decode(raw, &req); err != nil {
		return nil, "", err
	}

	event, err := h.sessions.EnterWithoutReservation(ctx, req)
	if err != nil {
		return nil, "", err
	}

	return event, entryMessage(event), nil
}

func entryMessage(event *domain.ParkingEvent) string {
	return fmt.Sprintf("park in space %d, your parking code is %s", event.SpaceNumber, event.ParkingCode)
}

func (h *ParkingHandler) extendSession(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args parkingCodeArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	event, err := h.sessions.ExtendSession(ctx, args.ParkingCode, args.SubscriberCode)
	if err != nil {
		return nil, "", err
	}

	return event, "parking session extended by 4 hours", nil
}

func (h *ParkingHandler) collectVehicle(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args parkingCodeArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	result, err := h.sessions.CollectVehicle(ctx, args.SubscriberCode, args.ParkingCode)
	if err != nil {
		return nil, "", err
	}

	return result, fmt.Sprintf("vehicle released, status: %s", result.Status), nil
}

func (h *ParkingHandler) getStatus(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args subscriberArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	view, err := h.sessions.CurrentStatus(ctx, args.SubscriberCode)
	if err != nil {
		return nil, "", err
	}

	return view, string(view.Status), nil
}

func (h *ParkingHandler) history(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args subscriberArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	views, err := h.sessions.History(ctx, args.SubscriberCode)
	if err != nil {
		return nil, "", err
	}

	return views, fmt.Sprintf("%d sessions", len(views)), nil
}

func (h *ParkingHandler) resendParkingCode(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args subscriberArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	if err := h.sessions.ResendParkingCode(ctx, args.SubscriberCode); err != nil {
		return nil, "", err
	}

	return nil, "parking code sent", nil
}

func (h *ParkingHandler) stats(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args lotArgs
	if len(raw) > 0 {
		if err := decode(raw, &args); err != nil {
			return nil, "", err
		}
	}

	lot := args.Lot
	if lot == "" {
		lot = h.availability.ReservationLot()
	}

	stats, err := h.availability.Stats(ctx, lot)
	if err != nil {
		return nil, "", err
	}

	return stats, "", nil
}

func (h *ParkingHandler) report(ctx context.Context, raw json.RawMessage) (interface{}, string, error) {
	var args monthArgs
	if err := decode(raw, &args); err != nil {
		return nil, "", err
	}

	if args.Generate {
		report, err := h.reports.GenerateMonthly(ctx, args.Month)
		if err != nil {
			return nil, "", err
		}
		return report, "report generated", nil
	}

	report, err := h.reports.GetMonthly(ctx, args.Month)
	if errors.Is(err, domain.ErrReportNotFound) {
		report, err = h.reports.Summarize(ctx, args.Month)
	}
	if err != nil {
		return nil, "", err
	}

	return report, "", nil
}
