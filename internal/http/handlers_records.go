package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"estoque/internal/core"
)

// resource binds one record table to the generic CRUD handlers.
type resource[T any] struct {
	path     string // route segment
	table    string
	title    string
	singular string
	rows     string // rows partial template
	edit     string // inline edit row template
	page     string // full page template

	list   func(ctx context.Context, query string) ([]T, error)
	get    func(ctx context.Context, id int64) (T, error)
	create func(ctx context.Context, rec T) (T, error)
	update func(ctx context.Context, id int64, rec T) (T, error)
	delete func(ctx context.Context, id int64) error
	parse  func(p *RequestBodyParser) (T, error)
	id     func(T) int64
}

func (s *Server) receiptResource() resource[core.Receipt] {
	return resource[core.Receipt]{
		path: "recebimentos", table: core.TableReceipts,
		title: "Recebimentos", singular: "Recebimento",
		rows: "recebimentos-rows", edit: "recebimentos-edit", page: "recebimentos.html",
		list: s.records.ListReceipts, get: s.records.GetReceipt,
		create: s.records.CreateReceipt, update: s.records.UpdateReceipt,
		delete: s.records.DeleteReceipt, parse: parseReceipt,
		id: func(r core.Receipt) int64 { return r.ID },
	}
}

func (s *Server) withdrawalResource() resource[core.Withdrawal] {
	return resource[core.Withdrawal]{
		path: "retiradas", table: core.TableWithdrawals,
		title: "Retiradas", singular: "Retirada",
		rows: "retiradas-rows", edit: "retiradas-edit", page: "retiradas.html",
		list: s.records.ListWithdrawals, get: s.records.GetWithdrawal,
		create: s.records.CreateWithdrawal, update: s.records.UpdateWithdrawal,
		delete: s.records.DeleteWithdrawal, parse: parseWithdrawal,
		id: func(w core.Withdrawal) int64 { return w.ID },
	}
}

func (s *Server) itemResource() resource[core.WithdrawalItem] {
	return resource[core.WithdrawalItem]{
		path: "retirada-itens", table: core.TableWithdrawalItems,
		title: "Itens de retirada", singular: "Item",
		rows: "retirada-itens-rows", edit: "retirada-itens-edit", page: "retirada-itens.html",
		list: s.records.ListWithdrawalItems, get: s.records.GetWithdrawalItem,
		create: s.records.CreateWithdrawalItem, update: s.records.UpdateWithdrawalItem,
		delete: s.records.DeleteWithdrawalItem, parse: parseWithdrawalItem,
		id: func(it core.WithdrawalItem) int64 { return it.ID },
	}
}

// mountAPI registers the JSON CRUD routes of res under /api/{path}.
func mountAPI[T any](r chi.Router, s *Server, res resource[T]) {
	r.Route("/"+res.path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			page, err := listPage(r, res)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, envelope{Success: true, Data: page})
		})

		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			rec, err := decode(r, res)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			saved, err := res.create(r.Context(), rec)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, envelope{Success: true, Message: res.singular + " criado", Data: saved})
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := parseID(r)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			rec, err := res.get(r.Context(), id)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, envelope{Success: true, Data: rec})
		})

		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := parseID(r)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			rec, err := decode(r, res)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			saved, err := res.update(r.Context(), id, rec)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, envelope{Success: true, Message: res.singular + " atualizado", Data: saved})
		})

		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := parseID(r)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			if err := res.delete(r.Context(), id); err != nil {
				s.respondError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, envelope{Success: true, Message: res.singular + " excluído"})
		})
	})
}

// listView is what list pages and row partials render.
type listView[T any] struct {
	Title  string
	Active string
	Path   string
	Query  string
	Page   core.Page[T]
}

// editView is what an inline edit row renders.
type editView[T any] struct {
	Path   string
	Record T
}

// mountUI registers the HTML page and its htmx partials.
func mountUI[T any](r chi.Router, s *Server, res resource[T]) {
	view := func(r *http.Request) (listView[T], error) {
		page, err := listPage(r, res)
		if err != nil {
			return listView[T]{}, err
		}
		return listView[T]{
			Title:  res.title,
			Active: res.path,
			Path:   res.path,
			Query:  ParseListParams(r.URL.Query()).Query,
			Page:   page,
		}, nil
	}

	r.Get("/"+res.path, func(w http.ResponseWriter, r *http.Request) {
		v, err := view(r)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		s.render(w, r, res.page, v)
	})

	r.Get("/ui/"+res.path+"/linhas", func(w http.ResponseWriter, r *http.Request) {
		v, err := view(r)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		s.render(w, r, res.rows, v)
	})

	r.Post("/ui/"+res.path, func(w http.ResponseWriter, r *http.Request) {
		rec, err := decode(r, res)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		saved, err := res.create(r.Context(), rec)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		writeRows(w, r, s, res, view, core.OpInsert, res.id(saved), res.singular+" salvo com sucesso")
	})

	r.Get("/ui/"+res.path+"/{id}/editar", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		rec, err := res.get(r.Context(), id)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		s.render(w, r, res.edit, editView[T]{Path: res.path, Record: rec})
	})

	r.Put("/ui/"+res.path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		rec, err := decode(r, res)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		if _, err := res.update(r.Context(), id, rec); err != nil {
			s.respondUIError(w, r, err)
			return
		}
		writeRows(w, r, s, res, view, core.OpUpdate, id, res.singular+" atualizado")
	})

	r.Delete("/ui/"+res.path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondUIError(w, r, err)
			return
		}
		if err := res.delete(r.Context(), id); err != nil {
			s.respondUIError(w, r, err)
			return
		}
		writeRows(w, r, s, res, view, core.OpDelete, id, res.singular+" excluído")
	})
}

// writeRows answers an htmx write with the refreshed rows and the triggers
// that reset the form and show a notification.
func writeRows[T any](w http.ResponseWriter, r *http.Request, s *Server, res resource[T], view func(*http.Request) (listView[T], error), op string, id int64, message string) {
	var buf bytes.Buffer
	v, err := view(r)
	if err == nil {
		err = s.templates.ExecuteTemplate(&buf, res.rows, v)
	}
	if err != nil {
		s.respondUIError(w, r, fmt.Errorf("render rows: %w", err))
		return
	}
	NewHTMXResponse().
		TriggerRecordChanged(res.table, op, id).
		TriggerFormReset().
		TriggerSuccessNotification(message).
		Header("Content-Type", "text/html; charset=utf-8").
		Body(buf.Bytes()).
		Write(w)
}

func listPage[T any](r *http.Request, res resource[T]) (core.Page[T], error) {
	params := ParseListParams(r.URL.Query())
	rows, err := res.list(r.Context(), params.Query)
	if err != nil {
		return core.Page[T]{}, err
	}
	return core.Paginate(rows, params.Page, params.PageSize), nil
}

func decode[T any](r *http.Request, res resource[T]) (T, error) {
	var zero T
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return zero, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return res.parse(p)
}
