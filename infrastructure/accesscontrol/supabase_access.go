package accesscontrol

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"graphqueryreader/application/ports"
	"graphqueryreader/domain/core/valueobjects"
)

// SupabaseAccess implements ports.AccessControl against a Supabase
// project's Postgres tables holding upload/entry ownership and
// collaborator grants, following the teacher's pattern of a single
// service-role client shared across requests (grounded on the teacher's
// supabase-go usage for auth lookups, generalized here to table reads).
type SupabaseAccess struct {
	client *supabase.Client
}

// NewSupabaseAccess builds a client against the given project URL using
// the service-role key, which is required for server-side table reads
// that bypass row-level security scoped to an end-user session.
func NewSupabaseAccess(projectURL, serviceRoleKey string) (*SupabaseAccess, error) {
	client, err := supabase.NewClient(projectURL, serviceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseAccess{client: client}, nil
}

type accessGrantRow struct {
	TargetID string `json:"target_id"`
	UserID   string `json:"user_id"`
	Public   bool   `json:"public"`
}

func (a *SupabaseAccess) CanReadUpload(ctx context.Context, user valueobjects.UserID, upload valueobjects.UploadID) (bool, error) {
	return a.canRead(ctx, "upload_access", upload.String(), user.String())
}

func (a *SupabaseAccess) CanReadEntry(ctx context.Context, user valueobjects.UserID, entry valueobjects.EntryID) (bool, error) {
	return a.canRead(ctx, "entry_access", entry.String(), user.String())
}

func (a *SupabaseAccess) canRead(ctx context.Context, table, targetID, userID string) (bool, error) {
	var rows []accessGrantRow
	_, err := a.client.From(table).
		Select("target_id,user_id,public", "", false).
		Eq("target_id", targetID).
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", table, err)
	}
	for _, row := range rows {
		if row.Public || row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ ports.AccessControl = (*SupabaseAccess)(nil)
