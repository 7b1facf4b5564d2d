package service

import (
	"context"
	"fmt"
	"log/slog"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/store"
)

// Questions asked for each still-missing profile field, in
// model.ProfileRequiredFields order.
var profileQuestions = map[string]string{
	model.FieldCompanyName:   "What is your company's registered name?",
	model.FieldLicenseNumber: "What is your contractor license number?",
	model.FieldGST:           "What is your GST number?",
	model.FieldCategory:      "Which category of work do you take up (civil, electrical, plumbing, ...)?",
}

const (
	replyPendingReview = "Your onboarding application is under review. We'll notify you once it's verified."
	replyVerified      = "You're already verified. No further onboarding steps are needed."
	replyAskDocuments  = "Thanks, I have your details. Please send photos of your license and GST certificate to complete onboarding."
	replySubmitted     = "All done! Your application has been submitted for review. We'll notify you once it's verified."
)

// ContractorService runs the onboarding conversation for one contractor.
// Onboarding is lifetime-scoped: one state and one finalized profile per user.
type ContractorService interface {
	HandleMessage(ctx context.Context, user *model.User, env model.Envelope) (*model.Reply, error)
	Profile(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error)
}

type contractorService struct {
	states      store.StateStore
	profiles    store.ProfileStore
	extractor   adapter.Extractor
	documents   adapter.DocumentAnalyzer
	objectStore adapter.ObjectStore
	cfg         config.WorkflowConfig
	logger      *slog.Logger
}

func NewContractorService(
	states store.StateStore,
	profiles store.ProfileStore,
	extractor adapter.Extractor,
	documents adapter.DocumentAnalyzer,
	objectStore adapter.ObjectStore,
	cfg config.WorkflowConfig,
	logger *slog.Logger,
) ContractorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contractorService{
		states:      states,
		profiles:    profiles,
		extractor:   extractor,
		documents:   documents,
		objectStore: objectStore,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *contractorService) HandleMessage(ctx context.Context, user *model.User, env model.Envelope) (*model.Reply, error) {
	state, err := s.states.GetContractor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("loading onboarding state: %w", err)
	}

	switch state.Status {
	case model.VerificationVerified:
		return &model.Reply{Text: replyVerified}, nil
	case model.VerificationPendingReview:
		return &model.Reply{Text: replyPendingReview}, nil
	}

	if env.Media != nil {
		return s.handleDocument(ctx, user, env, state)
	}
	return s.collectProfile(ctx, user, env, state)
}

func (s *contractorService) collectProfile(ctx context.Context, user *model.User, env model.Envelope, state *model.ContractorState) (*model.Reply, error) {
	if env.Text == "" {
		return &model.Reply{Text: s.nextPrompt(state)}, nil
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	result, err := s.extractor.Extract(tctx, env.Text, profilePartial(state.Profile), state.Missing)
	if err != nil {
		s.logger.ErrorContext(ctx, "profile field extraction failed", "user_id", user.ID, "error", err)
		return &model.Reply{Text: replyTryAgain}, nil
	}

	state.Profile.Merge(result.Fields)
	state.RecomputeMissing()

	if len(state.Missing) == 0 && len(state.Documents) > 0 {
		return s.finalize(ctx, user, state)
	}

	if len(state.Missing) == 0 {
		state.Status = model.VerificationCollectingDocuments
	}
	if err := s.states.PutContractor(ctx, state); err != nil {
		return nil, fmt.Errorf("saving onboarding state: %w", err)
	}
	return &model.Reply{Text: s.nextPrompt(state)}, nil
}

func (s *contractorService) handleDocument(ctx context.Context, user *model.User, env model.Envelope, state *model.ContractorState) (*model.Reply, error) {
	uctx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	docURL, err := s.objectStore.Upload(uctx, user.ID, *env.Media)
	if err != nil {
		s.logger.ErrorContext(ctx, "document upload failed", "user_id", user.ID, "error", err)
		return &model.Reply{Text: replyTryAgain}, nil
	}

	actx, cancel := context.WithTimeout(ctx, s.cfg.AdapterTimeout)
	defer cancel()

	analysis, err := s.documents.AnalyzeDocument(actx, docURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "document analysis failed", "user_id", user.ID, "error", err)
		return &model.Reply{Text: replyTryAgain}, nil
	}

	// Keep every received document, valid or not. Reviewers see the full set.
	state.Documents = append(state.Documents, docURL)

	if !analysis.Valid {
		if err := s.states.PutContractor(ctx, state); err != nil {
			return nil, fmt.Errorf("saving onboarding state: %w", err)
		}
		return &model.Reply{Text: fmt.Sprintf("I couldn't accept that document (%s). Please send a clear photo of your license or GST certificate.", analysis.Explanation)}, nil
	}

	// Document extraction never overwrites what the contractor typed.
	state.Profile.MergeMissing(analysis.Extracted)
	state.RecomputeMissing()

	if len(state.Missing) == 0 {
		return s.finalize(ctx, user, state)
	}

	if err := s.states.PutContractor(ctx, state); err != nil {
		return nil, fmt.Errorf("saving onboarding state: %w", err)
	}
	return &model.Reply{Text: "Document received. " + s.nextPrompt(state)}, nil
}

func (s *contractorService) finalize(ctx context.Context, user *model.User, state *model.ContractorState) (*model.Reply, error) {
	rec := &model.ContractorProfileRecord{
		ID:                 id.New(),
		UserID:             user.ID,
		CompanyName:        deref(state.Profile.CompanyName),
		LicenseNumber:      deref(state.Profile.LicenseNumber),
		GST:                deref(state.Profile.GST),
		Category:           deref(state.Profile.Category),
		DocumentURLs:       state.Documents,
		VerificationStatus: model.VerificationPendingReview,
	}

	// Record first, then the state flip. A crash in between re-runs
	// finalization on retry, and the upsert absorbs it.
	if err := s.profiles.Upsert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "contractor profile persist failed", "user_id", user.ID, "error", err)
		if perr := s.states.PutContractor(ctx, state); perr != nil {
			return nil, fmt.Errorf("saving onboarding state: %w", perr)
		}
		return &model.Reply{Text: replyTryAgain}, nil
	}

	state.Status = model.VerificationPendingReview
	if err := s.states.PutContractor(ctx, state); err != nil {
		return nil, fmt.Errorf("saving onboarding state: %w", err)
	}

	return &model.Reply{Text: replySubmitted}, nil
}

func (s *contractorService) nextPrompt(state *model.ContractorState) string {
	if len(state.Missing) > 0 {
		return profileQuestions[state.Missing[0]]
	}
	return replyAskDocuments
}

func (s *contractorService) Profile(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error) {
	rec, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("fetching contractor profile: %w", err)
	}
	return rec, nil
}

func profilePartial(p model.ContractorProfile) map[string]string {
	partial := make(map[string]string)
	for _, name := range model.ProfileRequiredFields {
		if v := p.Field(name); v != nil && *v != "" {
			partial[name] = *v
		}
	}
	return partial
}
