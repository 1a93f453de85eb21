package http

import (
	"context"
	"net/http"

	"finfinance/internal/core"
	applog "finfinance/internal/log"
)

// Generic CRUD plumbing shared by cards, bills and incomes.

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			FromError(r.Context(), applog.OpList, err).Write(w)
			return
		}
		if items == nil {
			items = []T{}
		}
		NewJSONResponse().Data(items).Write(w)
	}
}

func createHandler[T any](entity string, clean func(*T), create func(context.Context, T) (T, error), idOf func(T) int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			FromError(r.Context(), applog.OpCreate, err).Write(w)
			return
		}
		clean(&v)
		created, err := create(r.Context(), v)
		if err != nil {
			FromError(r.Context(), applog.OpCreate, err).Write(w)
			return
		}
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Record created",
			applog.NewFields().WithEntity(entity, idOf(created)).WithOperation(applog.OpCreate).ToSlice()...)
		NewJSONResponse().Status(http.StatusCreated).Data(created).Write(w)
	}
}

func updateHandler[T any](clean func(*T), update func(context.Context, int64, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			FromError(r.Context(), applog.OpUpdate, err).Write(w)
			return
		}
		var v T
		if err := decodeJSON(w, r, &v); err != nil {
			FromError(r.Context(), applog.OpUpdate, err).Write(w)
			return
		}
		clean(&v)
		updated, err := update(r.Context(), id, v)
		if err != nil {
			FromError(r.Context(), applog.OpUpdate, err).Write(w)
			return
		}
		NewJSONResponse().Data(updated).Write(w)
	}
}

func deleteHandler(entity string, del func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			FromError(r.Context(), applog.OpDelete, err).Write(w)
			return
		}
		if err := del(r.Context(), id); err != nil {
			FromError(r.Context(), applog.OpDelete, err).Write(w)
			return
		}
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Record deactivated",
			applog.NewFields().WithEntity(entity, id).WithOperation(applog.OpDelete).ToSlice()...)
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
	}
}

// Cards

func cleanCard(c *core.Card) {
	c.Name = sanitizeInput(c.Name)
	c.Bank = sanitizeInput(c.Bank)
	c.Brand = sanitizeInput(c.Brand)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	listHandler(s.svc.ListCards)(w, r)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	createHandler("card", cleanCard, s.svc.CreateCard, func(c core.Card) int64 { return c.ID })(w, r)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	updateHandler(cleanCard, s.svc.UpdateCard)(w, r)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	deleteHandler("card", s.svc.DeleteCard)(w, r)
}

// Fixed bills

func cleanBill(b *core.FixedBill) {
	b.Name = sanitizeInput(b.Name)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	listHandler(s.svc.ListBills)(w, r)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	createHandler("bill", cleanBill, s.svc.CreateBill, func(b core.FixedBill) int64 { return b.ID })(w, r)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	updateHandler(cleanBill, s.svc.UpdateBill)(w, r)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	deleteHandler("bill", s.svc.DeleteBill)(w, r)
}

// Extra incomes

func cleanIncome(i *core.ExtraIncome) {
	i.Description = sanitizeInput(i.Description)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	listHandler(s.svc.ListIncomes)(w, r)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	createHandler("income", cleanIncome, s.svc.CreateIncome, func(i core.ExtraIncome) int64 { return i.ID })(w, r)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	updateHandler(cleanIncome, s.svc.UpdateIncome)(w, r)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	deleteHandler("income", s.svc.DeleteIncome)(w, r)
}

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		FromError(r.Context(), applog.OpList, err).Write(w)
		return
	}
	items, err := s.svc.ListExpenses(r.Context(), params.Year, params.Month)
	if err != nil {
		FromError(r.Context(), applog.OpList, err).Write(w)
		return
	}
	NewJSONResponse().Data(items).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		FromError(r.Context(), applog.OpCreate, err).Write(w)
		return
	}
	e.Name = sanitizeInput(e.Name)
	e.Note = sanitizeInput(e.Note)

	rows, err := s.svc.CreateExpense(r.Context(), e)
	if err != nil {
		FromError(r.Context(), applog.OpCreate, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(rows).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		FromError(r.Context(), applog.OpDelete, err).Write(w)
		return
	}
	n, err := s.svc.DeleteExpense(r.Context(), id)
	if err != nil {
		FromError(r.Context(), applog.OpDelete, err).Write(w)
		return
	}
	NewJSONResponse().Data(map[string]int{"deleted": n}).Write(w)
}
