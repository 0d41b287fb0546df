package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/team"
)

type (
	ServiceInterface interface {
		Authorize(ctx context.Context, callerID string) error
		Run(ctx context.Context, req *Request) (*Report, error)
	}

	// Service is the import orchestrator: it turns a batch of heterogeneous
	// input into per-row provisioning outcomes. Rows are processed strictly
	// sequentially in input order; a failure in any single row never aborts
	// the batch.
	Service struct {
		identities IdentityProvider
		profiles   ProfileStore
		teams      TeamStore
		logger     core.Logger
		metrics    Metrics
		maxRows    int
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	conf *core.Config,
	identities IdentityProvider,
	profiles ProfileStore,
	teams TeamStore,
	logger core.Logger,
	metrics Metrics,
) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		identities: identities,
		profiles:   profiles,
		teams:      teams,
		logger:     logger,
		metrics:    metrics,
		maxRows:    conf.Server.ImportMaxRows,
	}
}

// Authorize checks that the caller holds an owner or admin profile.
// It is a batch precondition: no row is processed when it fails.
func (svc *Service) Authorize(ctx context.Context, callerID string) error {
	p, err := svc.profiles.GetProfileByID(ctx, callerID)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return ErrForbidden
		}
		return errors.Wrap(err, "finding caller profile")
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Run processes one batch and returns the per-row outcomes plus a summary.
func (svc *Service) Run(ctx context.Context, req *Request) (*Report, error) {
	started := time.Now()
	req.Clean()

	records, err := svc.materializeRows(req)
	if err != nil {
		return nil, core.NewValidationError(err)
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	if svc.maxRows > 0 && len(records) > svc.maxRows {
		return nil, ErrTooManyRows
	}

	// per-batch caches: every distinct team reference is validated against
	// the team store at most once
	bctx := &batchContext{
		teamIDByName:  make(map[string]string),
		verifiedTeams: make(map[string]bool),
	}

	report := &Report{Results: make([]RowResult, 0, len(records))}
	for _, rec := range records {
		res := svc.processRow(ctx, NormalizeRecord(rec), req.Mode, req.TeamMatch, bctx)
		if res.Status == StatusOK {
			report.Summary.Succeeded++
			svc.metrics.RowSucceeded()
		} else {
			report.Summary.Failed++
			svc.metrics.RowFailed()
		}
		report.Results = append(report.Results, res)
	}
	report.Summary.Total = len(report.Results)

	svc.metrics.BatchProcessed(report.Summary.Total, time.Since(started))
	svc.logger.Info(fmt.Sprintf(
		"import batch done: %d total, %d succeeded, %d failed",
		report.Summary.Total, report.Summary.Succeeded, report.Summary.Failed,
	))
	return report, nil
}

// materializeRows prefers Rows verbatim when non-empty, falling back to
// parsing CSV as a table with a header row.
func (svc *Service) materializeRows(req *Request) ([]map[string]string, error) {
	if len(req.Rows) > 0 {
		records := make([]map[string]string, 0, len(req.Rows))
		for _, rec := range req.Rows {
			records = append(records, coerceRecord(rec))
		}
		return records, nil
	}
	if req.CSV != "" {
		return parseCSV(req.CSV)
	}
	return nil, nil
}

// batchContext carries the team resolution caches through one batch;
// it is never shared across batches.
type batchContext struct {
	teamIDByName  map[string]string // "" caches a failed name lookup
	verifiedTeams map[string]bool
}

// processRow runs steps (normalize done by caller) provision/profile/membership
// for a single row. Any failure is contained to the returned RowResult.
func (svc *Service) processRow(ctx context.Context, row ImportRow, mode Mode, match TeamMatch, bctx *batchContext) RowResult {
	res := RowResult{Email: row.Email}

	if row.Email == "" {
		res.Status = StatusError
		res.Message = "Missing email"
		return res
	}

	teamID := svc.resolveTeam(ctx, row, match, bctx)

	idn, err := svc.provisionIdentity(ctx, row.Email, mode)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("provisioning identity: %v", err)
		return res
	}

	if err := svc.writeProfile(ctx, idn.ID, row); err != nil {
		// no rollback of the provisioned identity; the message makes the
		// partial state explicit so operators can reconcile
		res.Status = StatusError
		res.Message = fmt.Sprintf("identity created but profile write failed: %v", err)
		return res
	}

	if teamID != "" {
		res.TeamAssigned = svc.addMembership(ctx, teamID, idn.ID, row.Email)
	}

	res.Status = StatusOK
	if mode == ModeCreate {
		res.Message = "created"
	} else {
		res.Message = "invited"
	}
	return res
}

// resolveTeam resolves the row's team reference to a confirmed team ID, or ""
// for no team. An unresolved reference never fails the row.
func (svc *Service) resolveTeam(ctx context.Context, row ImportRow, match TeamMatch, bctx *batchContext) string {
	if match == MatchID {
		if row.TeamID == "" {
			return ""
		}
		if exists, cached := bctx.verifiedTeams[row.TeamID]; cached {
			if exists {
				return row.TeamID
			}
			return ""
		}
		exists, err := svc.teams.TeamExists(ctx, row.TeamID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("verifying team %q: %v", row.TeamID, err))
			exists = false
		}
		bctx.verifiedTeams[row.TeamID] = exists
		if exists {
			return row.TeamID
		}
		return ""
	}

	if row.TeamName == "" {
		return ""
	}
	if id, cached := bctx.teamIDByName[row.TeamName]; cached {
		return id
	}
	var id string
	if t, err := svc.teams.GetTeamByName(ctx, row.TeamName); err != nil {
		if errors.Cause(err) != team.ErrNotFound {
			svc.logger.Warn(fmt.Sprintf("looking up team %q: %v", row.TeamName, err))
		}
	} else {
		id = t.ID
	}
	bctx.teamIDByName[row.TeamName] = id
	return id
}

func (svc *Service) provisionIdentity(ctx context.Context, email string, mode Mode) (identity.Identity, error) {
	if mode == ModeCreate {
		return svc.identities.Create(ctx, email)
	}
	return svc.identities.Invite(ctx, email)
}

// writeProfile upserts the row's profile, retrying with the always-present
// field set when the schema is missing an optional column.
func (svc *Service) writeProfile(ctx context.Context, id string, row ImportRow) error {
	now := time.Now().UTC()
	p := profile.Profile{
		ID:           id,
		Role:         row.Role,
		FullName:     null.NewString(row.FullName(), row.FullName() != ""),
		FirstName:    null.NewString(row.FirstName, row.FirstName != ""),
		LastName:     null.NewString(row.LastName, row.LastName != ""),
		MobileNumber: null.NewString(row.MobileNumber, row.MobileNumber != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := svc.profiles.UpsertProfile(ctx, p)
	if err != nil && errors.Cause(err) == profile.ErrUnknownColumn {
		err = svc.profiles.UpsertProfileCore(ctx, p.Core())
	}
	return err
}

// addMembership attaches the identity to the resolved team; best-effort,
// a duplicate membership counts as assigned.
func (svc *Service) addMembership(ctx context.Context, teamID, userID, email string) bool {
	if err := svc.teams.AddMember(ctx, teamID, userID); err != nil {
		if errors.Cause(err) == team.ErrAlreadyMember {
			return true
		}
		svc.logger.Warn(fmt.Sprintf("assigning %s to team %s: %v", email, teamID, err))
		return false
	}
	return true
}
