package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"samvaad.app/intake/internal/http/handler"
	"samvaad.app/intake/internal/model"
)

var _ = Describe("RecordsHandler", func() {
	var (
		router       *gin.Engine
		fieldWorkers *mockFieldWorkerService
		contractors  *mockContractorService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		fieldWorkers = &mockFieldWorkerService{}
		contractors = &mockContractorService{}
		h := handler.NewRecordsHandler(fieldWorkers, contractors)
		router.GET("/reports/:userID", h.GetReport)
		router.GET("/contractors/:userID", h.GetContractorProfile)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("GetReport", func() {
		It("returns the finalized report for an explicit date", func() {
			var askedDate string
			fieldWorkers.reportFn = func(_ context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error) {
				askedDate = reportDate
				return &model.DailyReportRecord{ID: 5, UserID: userID, ReportDate: reportDate, Description: "poured slab", Site: "ward 4", Hours: "8", ProductivityScore: 8.5, ProofURLs: []string{"u"}}, nil
			}

			w := get("/reports/42?date=2026-08-30")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(askedDate).To(Equal("2026-08-30"))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["productivity_score"]).To(BeEquivalentTo(8.5))
		})

		It("returns 404 when nothing was finalized", func() {
			w := get("/reports/42?date=2026-08-30")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a malformed date", func() {
			w := get("/reports/42?date=yesterday")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a non-numeric user id", func() {
			w := get("/reports/ravi")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 on store failures", func() {
			fieldWorkers.reportFn = func(_ context.Context, _ int64, _ string) (*model.DailyReportRecord, error) {
				return nil, errors.New("db down")
			}

			w := get("/reports/42?date=2026-08-30")
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GetContractorProfile", func() {
		It("returns the finalized profile", func() {
			contractors.profileFn = func(_ context.Context, userID int64) (*model.ContractorProfileRecord, error) {
				return &model.ContractorProfileRecord{ID: 6, UserID: userID, CompanyName: "Sharma Constructions", VerificationStatus: model.VerificationPendingReview}, nil
			}

			w := get("/contractors/77")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["company_name"]).To(Equal("Sharma Constructions"))
			Expect(resp["verification_status"]).To(Equal("pending_review"))
		})

		It("returns 404 when onboarding never finished", func() {
			w := get("/contractors/77")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
