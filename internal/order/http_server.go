package order

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/EVFleetLink/EVFleetLink/internal/common/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// HTTPServer 订单工作流的 HTTP 入口。
// redis 为可选的状态读缓存（nil 时直接读库）。
type HTTPServer struct {
	svc   *Service
	redis *redis.Client
	log   logger.Logger
}

func NewHTTPServer(svc *Service, rdb *redis.Client, log logger.Logger) *HTTPServer {
	return &HTTPServer{svc: svc, redis: rdb, log: log}
}

// Register 挂载订单与任务路由。
func (s *HTTPServer) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.createOrder)
		r.Get("/", s.listOrders)
		r.Get("/{id}", s.getOrder)
		r.Get("/{id}/status", s.getOrderStatus)
		r.Put("/{id}", s.updateOrder)
		r.Put("/{id}/status", s.updateStatus)
		r.Post("/{id}/assign-vehicle", s.assignVehicle)
		r.Post("/{id}/assign-driver", s.assignDriver)
		r.Put("/{id}/payment-status", s.setPaymentStatus)
		r.Post("/{id}/payments", s.recordPayment)
		r.Post("/{id}/extra-fees", s.addExtraFee)
		r.Get("/{id}/tasks", s.listTasks)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/{id}", s.getTask)
		r.Put("/{id}", s.updateTask)
	})
	r.Get("/drivers/{id}/orders", s.listDriverOrders)
}

type createOrderReq struct {
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	CustomerEmail string        `json:"customerEmail"`
	Address       string        `json:"address"`
	OrderType     OrderType     `json:"orderType"`
	ScheduledTime time.Time     `json:"scheduledTime"`
	CarModel      string        `json:"carModel"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentAmount int64         `json:"paymentAmount"`
}

func (s *HTTPServer) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.CreateOrder(r.Context(), CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Address:       req.Address,
		OrderType:     req.OrderType,
		ScheduledTime: req.ScheduledTime,
		CarModel:      req.CarModel,
		PaymentStatus: req.PaymentStatus,
		PaymentAmount: req.PaymentAmount,
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.cacheStatus(r, o)
	writeJSON(w, http.StatusCreated, o)
}

func (s *HTTPServer) listOrders(w http.ResponseWriter, r *http.Request) {
	f := ListOrdersFilter{
		Status: Status(r.URL.Query().Get("status")),
		Offset: intQuery(r, "offset", 0),
		Limit:  intQuery(r, "limit", 20),
	}
	orders, total, err := s.svc.ListOrders(r.Context(), f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "total": total})
}

func (s *HTTPServer) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus 轻量状态查询：优先读 Redis 缓存，未命中回源并回填。
func (s *HTTPServer) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if cached, err := redisx.GetOrderStatus(r.Context(), s.redis, id); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(cached))
		return
	}

	o, err := s.svc.GetOrder(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

func (s *HTTPServer) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  *string    `json:"customerName"`
		CustomerPhone *string    `json:"customerPhone"`
		CustomerEmail *string    `json:"customerEmail"`
		Address       *string    `json:"address"`
		CarModel      *string    `json:"carModel"`
		ScheduledTime *time.Time `json:"scheduledTime"`
		PaymentAmount *int64     `json:"paymentAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.UpdateDetails(r.Context(), chi.URLParam(r, "id"), UpdateDetailsInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Address:       req.Address,
		CarModel:      req.CarModel,
		ScheduledTime: req.ScheduledTime,
		PaymentAmount: req.PaymentAmount,
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) assignVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleID string `json:"vehicleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.AssignVehicle(r.Context(), chi.URLParam(r, "id"), req.VehicleID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) assignDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID  string    `json:"driverId"`
		OrderType OrderType `json:"orderType"` // 兼容旧客户端；任务生成以订单记录为准
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.AssignDriver(r.Context(), chi.URLParam(r, "id"), req.DriverID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus PaymentStatus `json:"paymentStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64  `json:"amount"`
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	o, err := s.svc.RecordPayment(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Method)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *HTTPServer) addExtraFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Amount      int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	fee, err := s.svc.AddExtraFee(r.Context(), chi.URLParam(r, "id"), req.Description, req.Amount)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fee)
}

func (s *HTTPServer) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListTasks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *HTTPServer) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) updateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status TaskStatus `json:"status"`
		Notes  string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation", "invalid json")
		return
	}

	t, err := s.svc.AdvanceTaskStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) listDriverOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.svc.ListOrdersByDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// cacheStatus 状态变更后刷新 Redis 读缓存（失败只记日志）。
func (s *HTTPServer) cacheStatus(r *http.Request, o *Order) {
	if s.redis == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{"status": o.Status})
	if err := redisx.SetOrderStatus(r.Context(), s.redis, o.ID, payload); err != nil && s.log != nil {
		s.log.Warnf("failed to cache order status %s: %v", o.ID, err)
	}
}

// writeErr 将业务错误映射为 HTTP 状态码（语义保持可区分）：
// NotFound=404, Conflict=409, InvalidState/Validation=400。
func (s *HTTPServer) writeErr(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	switch kind {
	case errs.KindNotFound:
		writeJSONError(w, http.StatusNotFound, string(kind), err.Error())
	case errs.KindConflict:
		writeJSONError(w, http.StatusConflict, string(kind), err.Error())
	case errs.KindInvalidState, errs.KindValidation:
		writeJSONError(w, http.StatusBadRequest, string(kind), err.Error())
	default:
		if s.log != nil {
			s.log.Errorf("internal error: %v", err)
		}
		writeJSONError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, errCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": errCode, "error": msg})
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
