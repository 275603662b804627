package http

import (
	"errors"
	"net/http"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/service"
)

const dateLayout = "2006-01-02"

type cycleDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type bucketDTO struct {
	Start      string `json:"start"`
	TotalCents int64  `json:"total_cents"`
}

type categorySpendDTO struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	TotalCents int64  `json:"total_cents"`
}

type cardSpendDTO struct {
	CardID     string `json:"card_id"`
	Name       string `json:"name"`
	TotalCents int64  `json:"total_cents"`
}

type billStatusDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AmountCents  int64  `json:"amount_cents"`
	CategoryID   string `json:"category_id"`
	Frequency    string `json:"frequency"`
	NextDueAt    string `json:"next_due_at"`
	DaysUntilDue int    `json:"days_until_due"`
	IsOverdue    bool   `json:"is_overdue"`
	ReminderAt   string `json:"reminder_at"`
}

type overviewDTO struct {
	Cycle     cycleDTO `json:"cycle"`
	NextCycle cycleDTO `json:"next_cycle"`

	TotalSpentCents       int64 `json:"total_spent_cents"`
	AverageDailyCents     int64 `json:"average_daily_cents"`
	ProjectedMonthlyCents int64 `json:"projected_monthly_cents"`

	// SavingsRate is null when no positive income is configured.
	SavingsRate *float64 `json:"savings_rate"`

	TopCategories []categorySpendDTO `json:"top_categories"`
	ByCard        []cardSpendDTO     `json:"by_card"`
	DailySpend    []bucketDTO        `json:"daily_spend"`
	WeeklySpend   []bucketDTO        `json:"weekly_spend"`
	MonthlyTrend  []bucketDTO        `json:"monthly_trend"`

	UpcomingBills []billStatusDTO `json:"upcoming_bills"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if ov, ok := s.overviewCache.Get(overviewCacheKey); ok {
		writeJSON(w, http.StatusOK, toOverviewDTO(ov))
		return
	}

	ov, err := s.dashboard.BuildOverview(r.Context(), s.now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to build dashboard",
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	s.overviewCache.Set(overviewCacheKey, ov)
	writeJSON(w, http.StatusOK, toOverviewDTO(ov))
}

func (s *Server) handleCurrentCycle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCycleDTO(s.calc.CurrentCycle(s.now())))
}

func (s *Server) handleNextCycle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCycleDTO(s.calc.NextCycle(s.now())))
}

// handleListExpenses returns the transactions in the requested range,
// defaulting to the current billing cycle.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	rng := s.calc.CurrentCycle(s.now())

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
		rng.Start = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
		rng.End = t
	}
	if rng.End.Before(rng.Start) {
		writeError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	txs, err := s.reader.ListTransactions(r.Context(), rng)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list transactions",
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	type expenseDTO struct {
		ID          string `json:"id"`
		AmountCents int64  `json:"amount_cents"`
		OccurredAt  string `json:"occurred_at"`
		CategoryID  string `json:"category_id"`
		CardID      string `json:"card_id"`
		Store       string `json:"store,omitempty"`
		Notes       string `json:"notes,omitempty"`
	}

	out := make([]expenseDTO, len(txs))
	for i, tx := range txs {
		out[i] = expenseDTO{
			ID:          tx.ID,
			AmountCents: tx.Amount.Cents,
			OccurredAt:  tx.OccurredAt.Format(dateLayout),
			CategoryID:  tx.CategoryID,
			CardID:      tx.CardID,
			Store:       tx.Store,
			Notes:       tx.Notes,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"range":    toCycleDTO(rng),
		"expenses": out,
	})
}

type createExpenseRequest struct {
	Amount     string `json:"amount"`
	OccurredAt string `json:"occurred_at"`
	CategoryID string `json:"category_id"`
	CardID     string `json:"card_id"`
	Store      string `json:"store"`
	Notes      string `json:"notes"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	occurredAt, err := time.Parse(dateLayout, req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid occurred_at date, want YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		Amount:     core.Money{Cents: cents},
		OccurredAt: occurredAt,
		CategoryID: req.CategoryID,
		CardID:     req.CardID,
		Store:      req.Store,
		Notes:      req.Notes,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.txWriter.CreateTransaction(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to create expense",
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	s.overviewCache.Delete(overviewCacheKey)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleUpcomingBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.reader.ListBills(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list bills",
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}

	statuses := s.dashboard.BillStatuses(r.Context(), s.now(), bills)
	writeJSON(w, http.StatusOK, map[string]any{
		"bills": toBillStatusDTOs(statuses),
	})
}

func (s *Server) handleBillPaid(w http.ResponseWriter, r *http.Request) {
	billID := r.PathValue("id")
	if billID == "" {
		writeError(w, http.StatusBadRequest, "missing bill id")
		return
	}

	if err := s.billWriter.MarkPaid(r.Context(), billID, s.now()); err != nil {
		if errors.Is(err, ledger.ErrBillNotFound) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to mark bill paid",
			applog.FieldBillID, billID,
			applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.overviewCache.Delete(overviewCacheKey)

	s.logger.InfoContext(r.Context(), "Bill marked paid", applog.FieldBillID, billID)
	writeJSON(w, http.StatusOK, map[string]string{"id": billID, "status": "paid"})
}

func toCycleDTO(r cycle.DateRange) cycleDTO {
	return cycleDTO{
		Start: r.Start.Format(dateLayout),
		End:   r.End.Format(dateLayout),
		Days:  r.Days(),
	}
}

func toOverviewDTO(ov *service.Overview) overviewDTO {
	dto := overviewDTO{
		Cycle:                 toCycleDTO(ov.Cycle),
		NextCycle:             toCycleDTO(ov.NextCycle),
		TotalSpentCents:       ov.TotalSpent.Cents,
		AverageDailyCents:     ov.AverageDaily.Cents,
		ProjectedMonthlyCents: ov.ProjectedMonthly.Cents,
		TopCategories:         make([]categorySpendDTO, len(ov.TopCategories)),
		ByCard:                make([]cardSpendDTO, len(ov.ByCard)),
		DailySpend:            make([]bucketDTO, len(ov.DailySpend)),
		WeeklySpend:           make([]bucketDTO, len(ov.WeeklySpend)),
		MonthlyTrend:          make([]bucketDTO, len(ov.MonthlyTrend)),
		UpcomingBills:         toBillStatusDTOs(ov.UpcomingBills),
	}

	if ov.HasSavingsRate {
		rate := ov.SavingsRate
		dto.SavingsRate = &rate
	}

	for i, c := range ov.TopCategories {
		dto.TopCategories[i] = categorySpendDTO{CategoryID: c.CategoryID, Name: c.Name, TotalCents: c.Total.Cents}
	}
	for i, c := range ov.ByCard {
		dto.ByCard[i] = cardSpendDTO{CardID: c.CardID, Name: c.Name, TotalCents: c.Total.Cents}
	}
	for i, b := range ov.DailySpend {
		dto.DailySpend[i] = bucketDTO{Start: b.Start.Format(dateLayout), TotalCents: b.Total.Cents}
	}
	for i, b := range ov.WeeklySpend {
		dto.WeeklySpend[i] = bucketDTO{Start: b.Start.Format(dateLayout), TotalCents: b.Total.Cents}
	}
	for i, b := range ov.MonthlyTrend {
		dto.MonthlyTrend[i] = bucketDTO{Start: b.Start.Format(dateLayout), TotalCents: b.Total.Cents}
	}

	return dto
}

func toBillStatusDTOs(statuses []service.BillStatus) []billStatusDTO {
	out := make([]billStatusDTO, len(statuses))
	for i, st := range statuses {
		out[i] = billStatusDTO{
			ID:           st.Bill.ID,
			Name:         st.Bill.Name,
			AmountCents:  st.Bill.Amount.Cents,
			CategoryID:   st.Bill.CategoryID,
			Frequency:    string(st.Bill.Frequency),
			NextDueAt:    st.Facts.NextDueAt.Format(dateLayout),
			DaysUntilDue: st.Facts.DaysUntilDue,
			IsOverdue:    st.Facts.IsOverdue,
			ReminderAt:   st.Facts.ReminderAt.Format(dateLayout),
		}
	}
	return out
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyCard)
}
