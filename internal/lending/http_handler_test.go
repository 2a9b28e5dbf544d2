package lending

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryadmin/internal/money"
)

func newTestRouter(f fixture) http.Handler {
	h := NewHTTPHandler(f.service)
	r := chi.NewRouter()
	r.Route("/v1/transactions", h.TransactionRoutes)
	r.Route("/v1/fines", h.FineRoutes)
	return r
}

type envelope struct {
	Success bool                `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Meta    map[string]any      `json:"meta"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHTTPHandler_Issue(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	t.Run("created", func(t *testing.T) {
		f.repo.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(nil)

		w := serve(router, http.MethodPost, "/v1/transactions",
			`{"student_id":"stu-1","book_id":"book-1","due_date":"2026-04-03"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var tx Transaction
		require.NoError(t, jsoniter.Unmarshal(decode(t, w).Data, &tx))
		assert.Equal(t, StatusIssued, tx.Status)
		assert.Nil(t, tx.FineAmount)
	})

	t.Run("no copies left", func(t *testing.T) {
		f.repo.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(ErrNoCopiesAvailable)

		w := serve(router, http.MethodPost, "/v1/transactions",
			`{"student_id":"stu-1","book_id":"book-1","due_date":"2026-04-03"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "CAPACITY_EXCEEDED", env.Error.Code)
	})

	t.Run("due date in the past", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/v1/transactions",
			`{"student_id":"stu-1","book_id":"book-1","due_date":"2020-01-01"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/v1/transactions", `{"student_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_Return(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	f.repo.EXPECT().Return(gomock.Any(), "txn-1", testToday).Return(Transaction{ID: "txn-1", Status: StatusReturned}, nil)
	f.repo.EXPECT().Return(gomock.Any(), "txn-2", testToday).Return(Transaction{}, ErrAlreadyReturned)
	f.repo.EXPECT().Return(gomock.Any(), "txn-3", testToday).Return(Transaction{}, ErrNotFound)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/v1/transactions/txn-1/return", "").Code)
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/v1/transactions/txn-2/return", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/v1/transactions/txn-3/return", "").Code)
}

func TestHTTPHandler_List(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	t.Run("filters by status", func(t *testing.T) {
		f.repo.EXPECT().ListJoined(gomock.Any()).Return([]View{
			{Transaction: Transaction{ID: "txn-2", Status: StatusIssued}},
			{Transaction: Transaction{ID: "txn-1", Status: StatusReturned}},
		}, nil)

		w := serve(router, http.MethodGet, "/v1/transactions?status=returned", "")

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		assert.EqualValues(t, 1, env.Meta["total"])
		var views []View
		require.NoError(t, jsoniter.Unmarshal(env.Data, &views))
		require.Len(t, views, 1)
		assert.Equal(t, "txn-1", views[0].ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/v1/transactions?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("stats", func(t *testing.T) {
		f.repo.EXPECT().List(gomock.Any()).Return(seqOf(
			Transaction{ID: "txn-1", Status: StatusIssued},
			Transaction{ID: "txn-2", Status: StatusReturned},
		))

		w := serve(router, http.MethodGet, "/v1/transactions/stats", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var st Stats
		require.NoError(t, jsoniter.Unmarshal(decode(t, w).Data, &st))
		assert.Equal(t, Stats{Issued: 1, Returned: 1}, st)
	})
}

func TestHTTPHandler_Fines(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	overdue := []View{
		{
			Transaction: Transaction{ID: "txn-1", Status: StatusIssued, DueDate: day(-3)},
			StudentName: "Asha", BookTitle: "Dune",
		},
	}

	t.Run("overdue", func(t *testing.T) {
		f.repo.EXPECT().ListJoined(gomock.Any()).Return(overdue, nil)

		w := serve(router, http.MethodGet, "/v1/fines/overdue", "")

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		assert.EqualValues(t, money.Rupees(6), env.Meta["total_pending_fines_paise"])
		var items []OverdueItem
		require.NoError(t, jsoniter.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, int64(3), items[0].DaysOverdue)
		assert.Equal(t, money.Rupees(6), items[0].FineDue)
	})

	t.Run("summary", func(t *testing.T) {
		f.repo.EXPECT().ListJoined(gomock.Any()).Return(overdue, nil)

		w := serve(router, http.MethodGet, "/v1/fines/summary", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var sum Summary
		require.NoError(t, jsoniter.Unmarshal(decode(t, w).Data, &sum))
		assert.Equal(t, Summary{FineRate: money.Rupees(2), OverdueCount: 1, TotalPendingFines: money.Rupees(6)}, sum)
	})

	t.Run("apply twice", func(t *testing.T) {
		applied := money.Rupees(6)
		f.repo.EXPECT().Get(gomock.Any(), "txn-1").Return(overdue[0].Transaction, nil)
		f.repo.EXPECT().ApplyFine(gomock.Any(), "txn-1", money.Rupees(6)).Return(Transaction{ID: "txn-1", FineAmount: &applied}, nil)
		f.repo.EXPECT().Get(gomock.Any(), "txn-1").Return(Transaction{ID: "txn-1", FineAmount: &applied}, nil)

		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/v1/fines/txn-1/apply", "").Code)
		assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/v1/fines/txn-1/apply", "").Code)
	})

	t.Run("report", func(t *testing.T) {
		f.repo.EXPECT().ListJoined(gomock.Any()).Return(overdue, nil)

		w := serve(router, http.MethodGet, "/v1/fines/report.pdf", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "overdue-report-2026-03-20.pdf")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})
}
