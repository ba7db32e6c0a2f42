package retrieval

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa/internal/service"
	"docqa/internal/storage/mocks"
)

func TestVerify_AllResultsAuthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	memberships := mocks.NewMockMembershipStore(ctrl)
	memberships.EXPECT().ListOrganizations(gomock.Any(), "user-1").Return([]string{"org-a", "org-b"}, nil)

	v := NewVerifier(memberships)

	results := []Result{
		{ChunkID: "c1", OwnerID: "user-1", SourceType: SourcePersonal},
		{ChunkID: "c2", OwnerID: "user-9", OrganizationID: "org-a", SourceType: SourceOrganization},
		{ChunkID: "c3", OwnerID: "user-7", OrganizationID: "org-b", SourceType: SourceOrganization},
	}
	if err := v.Verify(context.Background(), results, "user-1"); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestVerify_Violations(t *testing.T) {
	tests := []struct {
		name    string
		orgs    []string
		results []Result
	}{
		{
			name: "foreign personal chunk",
			orgs: []string{"org-a"},
			results: []Result{
				{ChunkID: "c1", OwnerID: "someone-else", SourceType: SourcePersonal},
			},
		},
		{
			name: "organization outside memberships",
			orgs: []string{"org-a"},
			results: []Result{
				{ChunkID: "c1", OwnerID: "user-9", OrganizationID: "org-z", SourceType: SourceOrganization},
			},
		},
		{
			name: "one bad result among good ones",
			orgs: []string{"org-a"},
			results: []Result{
				{ChunkID: "good-1", OwnerID: "user-1", SourceType: SourcePersonal},
				{ChunkID: "bad", OwnerID: "intruder", SourceType: SourcePersonal},
				{ChunkID: "good-2", OwnerID: "user-9", OrganizationID: "org-a", SourceType: SourceOrganization},
			},
		},
		{
			name: "unknown source type",
			orgs: nil,
			results: []Result{
				{ChunkID: "c1", OwnerID: "user-1", SourceType: SourceType("mystery")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			memberships := mocks.NewMockMembershipStore(ctrl)
			memberships.EXPECT().ListOrganizations(gomock.Any(), "user-1").Return(tt.orgs, nil)

			v := NewVerifier(memberships)

			err := v.Verify(context.Background(), tt.results, "user-1")
			if !errors.Is(err, service.ErrSecurityViolation) {
				t.Errorf("Verify() error = %v, want service.ErrSecurityViolation", err)
			}
		})
	}
}

func TestVerify_EmptyResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No membership lookup should happen for empty input.
	memberships := mocks.NewMockMembershipStore(ctrl)

	v := NewVerifier(memberships)
	if err := v.Verify(context.Background(), nil, "user-1"); err != nil {
		t.Errorf("Verify(nil) error = %v, want nil", err)
	}
}
