package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/store"
)

const scopeDateLayout = "2006-01-02"

// Questions asked for each still-missing report field, in
// model.ReportRequiredFields order.
var reportQuestions = map[string]string{
	model.FieldDescription: "What work did you do today?",
	model.FieldSite:        "Which site were you working at today?",
	model.FieldHours:       "How many hours did you work today?",
}

const (
	replyReportDone       = "Your report for today is already submitted. Thank you!"
	replyAskProof         = "Got everything I need. Please send a photo of the work as proof to finish your report."
	replyProofReminder    = "I still need a photo of today's work to finish your report. Please send one when you can."
	replyProofUnavailable = "I couldn't check that photo right now. Please send it again in a little while."
	replyTryAgain         = "Sorry, something went wrong on my end. Please send that again."
)

// FieldWorkerService runs the daily-report conversation for one field worker.
// Retries of the same inbound message are safe at every step.
type FieldWorkerService interface {
	HandleMessage(ctx context.Context, user *model.User, env model.Envelope) (*model.Reply, error)
	Report(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error)
}

type fieldWorkerService struct {
	states      store.StateStore
	reports     store.ReportStore
	extractor   adapter.Extractor
	proofs      adapter.ProofValidator
	scorer      adapter.Scorer
	objectStore adapter.ObjectStore
	cfg         config.WorkflowConfig
	logger      *slog.Logger
	now         func() time.Time
}

func NewFieldWorkerService(
	states store.StateStore,
	reports store.ReportStore,
	extractor adapter.Extractor,
	proofs adapter.ProofValidator,
	scorer adapter.Scorer,
	objectStore adapter.ObjectStore,
	cfg config.WorkflowConfig,
	logger *slog.Logger,
) FieldWorkerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &fieldWorkerService{
		states:      states,
		reports:     reports,
		extractor:   extractor,
		proofs:      proofs,
		scorer:      scorer,
		objectStore: objectStore,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *fieldWorkerService) HandleMessage(ctx context.Context, user *model.User, env model.Envelope) (*model.Reply, error) {
	scopeDate := s.now().UTC().Format(scopeDateLayout)

	state, err := s.states.GetFieldWorker(ctx, user.ID, scopeDate)
	if err != nil {
		return nil, fmt.Errorf("loading report state: %w", err)
	}

	if state.Status == model.ReportStatusComplete {
		return s.completedReply(ctx, user.ID, state.ScopeDate), nil
	}

	// A photo is treated as proof in every state before complete. The upload
	// already happened on the citizen's side, so it is never deflected.
	if env.Media != nil {
		return s.handleProof(ctx, user, env, state)
	}

	if state.Status == model.ReportStatusAwaitingProof {
		return &model.Reply{Text: replyProofReminder}, nil
	}
	return s.collectFields(ctx, user, env, state)
}

// completedReply rebuilds the submission summary from the persisted record.
// The state alone is not trusted for it since the record is the source of
// truth once the day is complete.
func (s *fieldWorkerService) completedReply(ctx context.Context, userID int64, scopeDate string) *model.Reply {
	rec, err := s.reports.GetByUserAndDate(ctx, userID, scopeDate)
	if err != nil {
		if err != store.ErrNotFound {
			s.logger.WarnContext(ctx, "submitted report lookup failed", "user_id", userID, "report_date", scopeDate, "error", err)
		}
		return &model.Reply{Text: replyReportDone}
	}
	return &model.Reply{Text: fmt.Sprintf(
		"Your report for today is already submitted: %s at %s (%s hours). Thank you!",
		rec.Description, rec.Site, rec.Hours,
	)}
}

func (s *fieldWorkerService) collectFields(ctx context.Context, user *model.User, env model.Envelope, state *model.FieldWorkerState) (*model.Reply, error) {
	if env.Text == "" {
		return &model.Reply{Text: reportQuestions[state.Missing[0]]}, nil
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	result, err := s.extractor.Extract(tctx, env.Text, reportPartial(state.Report), state.Missing)
	if err != nil {
		s.logger.ErrorContext(ctx, "report field extraction failed", "user_id", user.ID, "error", err)
		return &model.Reply{Text: replyTryAgain}, nil
	}

	state.Report.Merge(result.Fields)
	state.RecomputeMissing()

	if len(state.Missing) == 0 {
		state.Status = model.ReportStatusAwaitingProof
		if err := s.states.PutFieldWorker(ctx, state); err != nil {
			return nil, fmt.Errorf("saving report state: %w", err)
		}
		return &model.Reply{Text: replyAskProof}, nil
	}

	if err := s.states.PutFieldWorker(ctx, state); err != nil {
		return nil, fmt.Errorf("saving report state: %w", err)
	}
	return &model.Reply{Text: reportQuestions[state.Missing[0]]}, nil
}

func (s *fieldWorkerService) handleProof(ctx context.Context, user *model.User, env model.Envelope, state *model.FieldWorkerState) (*model.Reply, error) {
	uctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	proofURL, err := s.objectStore.Upload(uctx, user.ID, *env.Media)
	if err != nil {
		s.logger.ErrorContext(ctx, "proof upload failed", "user_id", user.ID, "error", err)
		return &model.Reply{Text: replyTryAgain}, nil
	}

	vctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	analysis, err := s.proofs.ValidateProof(vctx, state.Report, proofURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "proof validation failed", "user_id", user.ID, "policy", string(s.cfg.ProofFailurePolicy), "error", err)
		if s.cfg.ProofFailurePolicy == config.ProofPolicyFailClosed {
			return &model.Reply{Text: replyProofUnavailable}, nil
		}
		// Fail open: accept the proof unverified rather than stall the worker.
		analysis = &adapter.ProofAnalysis{
			Valid:       true,
			Explanation: "accepted without verification",
			Confidence:  0.1,
		}
	}

	// Keep the uploaded photo either way. The upload already succeeded, so a
	// rejected verdict never rolls the reference back.
	state.Proofs = append(state.Proofs, proofURL)

	if !analysis.Valid {
		if err := s.states.PutFieldWorker(ctx, state); err != nil {
			return nil, fmt.Errorf("saving report state: %w", err)
		}
		return &model.Reply{Text: fmt.Sprintf("That photo doesn't look like proof of today's work (%s). Please send a clearer photo of the work itself.", analysis.Explanation)}, nil
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	score, err := s.scorer.Score(sctx, state.Report, *analysis)
	if err != nil {
		s.logger.ErrorContext(ctx, "productivity scoring failed", "user_id", user.ID, "error", err)
		// Keep the accepted proof so a retry does not re-validate it for nothing.
		if perr := s.states.PutFieldWorker(ctx, state); perr != nil {
			return nil, fmt.Errorf("saving report state: %w", perr)
		}
		return &model.Reply{Text: replyTryAgain}, nil
	}

	rec := &model.DailyReportRecord{
		ID:                id.New(),
		UserID:            user.ID,
		ReportDate:        state.ScopeDate,
		Description:       deref(state.Report.Description),
		Site:              deref(state.Report.Site),
		Hours:             deref(state.Report.Hours),
		Blockers:          state.Report.Blockers,
		ProofURLs:         state.Proofs,
		ProductivityScore: score,
	}

	// The record lands before the state flips to complete. A crash between the
	// two writes re-runs finalization on retry, and the upsert absorbs it.
	if err := s.reports.Upsert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "daily report persist failed", "user_id", user.ID, "report_date", state.ScopeDate, "error", err)
		if perr := s.states.PutFieldWorker(ctx, state); perr != nil {
			return nil, fmt.Errorf("saving report state: %w", perr)
		}
		return &model.Reply{Text: replyTryAgain}, nil
	}

	state.Status = model.ReportStatusComplete
	if err := s.states.PutFieldWorker(ctx, state); err != nil {
		return nil, fmt.Errorf("saving report state: %w", err)
	}

	return &model.Reply{Text: fmt.Sprintf("Report submitted. Productivity score: %.1f/10. Thank you for your work today!", score)}, nil
}

func (s *fieldWorkerService) Report(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error) {
	rec, err := s.reports.GetByUserAndDate(ctx, userID, reportDate)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching daily report: %w", err)
	}
	return rec, nil
}

func reportPartial(r model.DailyReport) map[string]string {
	partial := make(map[string]string)
	for _, name := range []string{model.FieldDescription, model.FieldSite, model.FieldHours, model.FieldBlockers} {
		if v := r.Field(name); v != nil && *v != "" {
			partial[name] = *v
		}
	}
	return partial
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
