package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/service"
)

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func filledReportState(userID int64, status model.ReportStatus) *model.FieldWorkerState {
	st := model.NewFieldWorkerState(userID, today())
	st.Report.Merge(map[string]string{
		model.FieldDescription: "poured the slab for block B",
		model.FieldSite:        "Ward 4 school",
		model.FieldHours:       "8",
	})
	st.RecomputeMissing()
	st.Status = status
	return st
}

var _ = Describe("FieldWorkerService", func() {
	var (
		svc         service.FieldWorkerService
		states      *mockStateStore
		reports     *mockReportStore
		extractor   *mockExtractor
		proofs      *mockProofValidator
		scorer      *mockScorer
		objectStore *mockObjectStore
		wcfg        config.WorkflowConfig
		ctx         context.Context
		user        *model.User
	)

	newService := func() service.FieldWorkerService {
		return service.NewFieldWorkerService(states, reports, extractor, proofs, scorer, objectStore, wcfg, nil)
	}

	BeforeEach(func() {
		ctx = context.Background()
		states = &mockStateStore{}
		reports = &mockReportStore{}
		extractor = &mockExtractor{}
		proofs = &mockProofValidator{}
		scorer = &mockScorer{}
		objectStore = &mockObjectStore{}
		wcfg = config.WorkflowConfig{
			AdapterTimeout:     time.Second,
			ProofFailurePolicy: config.ProofPolicyFailOpen,
			UserLockTTL:        time.Minute,
		}
		user = &model.User{ID: 42, Channel: "whatsapp", ExternalID: "+919800000001", Name: "Ravi", Role: model.RoleFieldWorker}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = newService()
	})

	Describe("collecting report fields", func() {
		It("merges extracted fields and asks for the next missing one", func() {
			extractor.extractFn = func(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error) {
				return &adapter.ExtractionResult{Fields: map[string]string{
					model.FieldDescription: "laid pipes on the main road",
					model.FieldSite:        "Sector 12",
				}}, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Channel: "whatsapp", SenderID: "+919800000001", Text: "laid pipes on the main road in sector 12"})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("How many hours"))

			saved := states.lastFieldWorker()
			Expect(saved).NotTo(BeNil())
			Expect(saved.Status).To(Equal(model.ReportStatusCollecting))
			Expect(saved.Missing).To(Equal([]string{model.FieldHours}))
			Expect(*saved.Report.Description).To(Equal("laid pipes on the main road"))
		})

		It("passes already-known fields to the extractor", func() {
			states.getFieldWorkerFn = func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
				st := model.NewFieldWorkerState(userID, scopeDate)
				st.Report.Merge(map[string]string{model.FieldDescription: "cleared the drain"})
				st.RecomputeMissing()
				return st, nil
			}

			_, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "at the bus depot"})

			Expect(err).NotTo(HaveOccurred())
			Expect(extractor.lastPartial).To(HaveKeyWithValue(model.FieldDescription, "cleared the drain"))
			Expect(extractor.lastRequired).To(Equal([]string{model.FieldSite, model.FieldHours}))
		})

		It("never lets an empty extraction clear a known field", func() {
			states.getFieldWorkerFn = func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
				st := model.NewFieldWorkerState(userID, scopeDate)
				st.Report.Merge(map[string]string{model.FieldDescription: "cleared the drain"})
				st.RecomputeMissing()
				return st, nil
			}
			extractor.extractFn = func(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error) {
				return &adapter.ExtractionResult{Fields: map[string]string{model.FieldDescription: "", model.FieldSite: "depot"}}, nil
			}

			_, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "the depot"})

			Expect(err).NotTo(HaveOccurred())
			saved := states.lastFieldWorker()
			Expect(*saved.Report.Description).To(Equal("cleared the drain"))
			Expect(*saved.Report.Site).To(Equal("depot"))
		})

		It("asks for proof once the last required field arrives", func() {
			extractor.extractFn = func(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error) {
				return &adapter.ExtractionResult{Fields: map[string]string{
					model.FieldDescription: "painted the railings",
					model.FieldSite:        "Gandhi park",
					model.FieldHours:       "6",
				}}, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "painted railings at gandhi park for 6 hours"})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("photo"))
			Expect(states.lastFieldWorker().Status).To(Equal(model.ReportStatusAwaitingProof))
		})

		It("keeps state untouched and asks to retry when extraction fails", func() {
			extractor.extractFn = func(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error) {
				return nil, errors.New("model overloaded")
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "dug the trench"})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("send that again"))
			Expect(states.savedFieldWorker).To(BeEmpty())
		})

		It("treats a photo sent before the fields are done as proof", func() {
			proofs.validateFn = func(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error) {
				return &adapter.ProofAnalysis{Valid: false, Explanation: "no report details to compare against"}, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/a.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(objectStore.uploads).To(Equal(1))
			Expect(proofs.calls).To(Equal(1))
			Expect(reply.Text).To(ContainSubstring("clearer photo"))

			saved := states.lastFieldWorker()
			Expect(saved.Status).To(Equal(model.ReportStatusCollecting))
			Expect(saved.Proofs).To(Equal([]string{"https://media.example/proof.jpg"}))
		})
	})

	Describe("awaiting proof", func() {
		BeforeEach(func() {
			states.getFieldWorkerFn = func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
				return filledReportState(userID, model.ReportStatusAwaitingProof), nil
			}
		})

		It("reminds about the photo when text arrives, without touching state", func() {
			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "done for today"})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("photo"))
			Expect(states.savedFieldWorker).To(BeEmpty())
		})

		It("finalizes the report when a valid photo arrives", func() {
			scorer.scoreFn = func(ctx context.Context, report model.DailyReport, analysis adapter.ProofAnalysis) (float64, error) {
				return 8.0, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/proof.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("8.0"))

			Expect(reports.upsertedRecords).To(HaveLen(1))
			rec := reports.upsertedRecords[0]
			Expect(rec.UserID).To(Equal(int64(42)))
			Expect(rec.ReportDate).To(Equal(today()))
			Expect(rec.Description).To(Equal("poured the slab for block B"))
			Expect(rec.ProofURLs).To(Equal([]string{"https://media.example/proof.jpg"}))
			Expect(rec.ProductivityScore).To(Equal(8.0))

			Expect(states.lastFieldWorker().Status).To(Equal(model.ReportStatusComplete))
		})

		It("rejects an invalid photo but keeps the upload on record", func() {
			proofs.validateFn = func(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error) {
				return &adapter.ProofAnalysis{Valid: false, Explanation: "photo shows a parked scooter"}, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/scooter.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("parked scooter"))
			Expect(reports.upsertedRecords).To(BeEmpty())

			saved := states.lastFieldWorker()
			Expect(saved).NotTo(BeNil())
			Expect(saved.Status).To(Equal(model.ReportStatusAwaitingProof))
			Expect(saved.Proofs).To(Equal([]string{"https://media.example/proof.jpg"}))
		})

		It("keeps every rejected upload when a second photo arrives", func() {
			states.getFieldWorkerFn = func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
				st := filledReportState(userID, model.ReportStatusAwaitingProof)
				st.Proofs = []string{"https://media.example/first.jpg"}
				return st, nil
			}
			proofs.validateFn = func(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error) {
				return &adapter.ProofAnalysis{Valid: false, Explanation: "too blurry"}, nil
			}

			_, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/second.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(states.lastFieldWorker().Proofs).To(Equal([]string{"https://media.example/first.jpg", "https://media.example/proof.jpg"}))
		})

		It("asks to resend when the upload fails", func() {
			objectStore.uploadFn = func(ctx context.Context, ownerID int64, media model.Media) (string, error) {
				return "", errors.New("bucket unreachable")
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/p.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("send that again"))
			Expect(states.savedFieldWorker).To(BeEmpty())
			Expect(proofs.calls).To(BeZero())
		})

		Context("when the proof validator itself fails", func() {
			BeforeEach(func() {
				proofs.validateFn = func(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error) {
					return nil, errors.New("vision model timeout")
				}
			})

			It("fail_open accepts the proof and completes the report", func() {
				reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/p.jpg"}})

				Expect(err).NotTo(HaveOccurred())
				Expect(reply.Text).To(ContainSubstring("Report submitted"))
				Expect(reports.upsertedRecords).To(HaveLen(1))
				Expect(states.lastFieldWorker().Status).To(Equal(model.ReportStatusComplete))
			})

			It("fail_closed asks for a resend and persists nothing", func() {
				wcfg.ProofFailurePolicy = config.ProofPolicyFailClosed
				svc = newService()

				reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/p.jpg"}})

				Expect(err).NotTo(HaveOccurred())
				Expect(reply.Text).To(ContainSubstring("send it again"))
				Expect(reports.upsertedRecords).To(BeEmpty())
				Expect(states.savedFieldWorker).To(BeEmpty())
			})
		})

		It("keeps the accepted proof but stays awaiting when scoring fails", func() {
			scorer.scoreFn = func(ctx context.Context, report model.DailyReport, analysis adapter.ProofAnalysis) (float64, error) {
				return 0, errors.New("scoring model down")
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/p.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("send that again"))
			Expect(reports.upsertedRecords).To(BeEmpty())

			saved := states.lastFieldWorker()
			Expect(saved.Status).To(Equal(model.ReportStatusAwaitingProof))
			Expect(saved.Proofs).To(HaveLen(1))
		})

		It("does not mark the day complete when the record write fails", func() {
			reports.upsertFn = func(ctx context.Context, rec *model.DailyReportRecord) error {
				return errors.New("db down")
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/p.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("send that again"))

			saved := states.lastFieldWorker()
			Expect(saved.Status).To(Equal(model.ReportStatusAwaitingProof))
		})
	})

	Describe("completed report", func() {
		BeforeEach(func() {
			states.getFieldWorkerFn = func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
				return filledReportState(userID, model.ReportStatusComplete), nil
			}
		})

		It("replies with the submitted summary from the record, mutating nothing", func() {
			reports.getByUserDateFn = func(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error) {
				return &model.DailyReportRecord{
					UserID:      userID,
					ReportDate:  reportDate,
					Description: "poured the slab for block B",
					Site:        "Ward 4 school",
					Hours:       "8",
				}, nil
			}

			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Text: "adding one more thing"})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("already submitted"))
			Expect(reply.Text).To(ContainSubstring("poured the slab for block B"))
			Expect(reply.Text).To(ContainSubstring("Ward 4 school"))
			Expect(reply.Text).To(ContainSubstring("8 hours"))
			Expect(states.savedFieldWorker).To(BeEmpty())
			Expect(reports.upsertedRecords).To(BeEmpty())
			Expect(objectStore.uploads).To(BeZero())
		})

		It("still answers when the record lookup fails, even with a photo attached", func() {
			reply, err := svc.HandleMessage(ctx, user, model.Envelope{Media: &model.Media{MimeType: "image/jpeg", URL: "https://cdn.example/late.jpg"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(ContainSubstring("already submitted"))
			Expect(objectStore.uploads).To(BeZero())
			Expect(states.savedFieldWorker).To(BeEmpty())
		})
	})
})
