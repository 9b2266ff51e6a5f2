package profile

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const profilesCollection = "profiles"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) doc(profileID string) *firestore.DocumentRef {
	return r.client.Collection(profilesCollection).Doc(profileID)
}

func (r *firestoreRepository) GetProfile(ctx context.Context, profileID string) (*Profile, error) {
	doc, err := r.doc(profileID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	p.ProfileID = doc.Ref.ID
	p.ensureContainers()
	return &p, nil
}

func (r *firestoreRepository) CreateProfile(ctx context.Context, p *Profile) error {
	_, err := r.doc(p.ProfileID).Create(ctx, p)
	if status.Code(err) == codes.AlreadyExists {
		// Lost a create race; the document exists, which is all we need.
		return nil
	}
	return err
}

// SetField writes a single top-level field. Only the named path and the
// updated_at stamp change; the rest of the document is untouched, so a
// malformed legacy entry elsewhere can never reject this write.
func (r *firestoreRepository) SetField(ctx context.Context, profileID, path string, value any) error {
	_, err := r.doc(profileID).Update(ctx, []firestore.Update{
		{Path: path, Value: value},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return ErrProfileNotFound
	}
	return err
}

// SetSkillsAndBadges updates the tested skills and badges together in one
// transaction. Badge tiers are derived from tested skills, so the two arrays
// must never be persisted out of step with each other.
func (r *firestoreRepository) SetSkillsAndBadges(ctx context.Context, profileID string, testedSkills []TestedSkill, badges []Badge) error {
	docRef := r.doc(profileID)
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(docRef); err != nil {
			return err
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "tested_skills", Value: testedSkills},
			{Path: "badges", Value: badges},
			{Path: "updated_at", Value: now},
		})
	})
	if status.Code(err) == codes.NotFound {
		return ErrProfileNotFound
	}
	return err
}

func (r *firestoreRepository) SetCodeChefStats(ctx context.Context, profileID string, stats CodeChefStats) error {
	return r.SetField(ctx, profileID, "code_chef", stats)
}

func (r *firestoreRepository) SetLeetCodeStats(ctx context.Context, profileID string, stats LeetCodeStats) error {
	return r.SetField(ctx, profileID, "leet_code", stats)
}

func (r *firestoreRepository) SetGitHubStats(ctx context.Context, profileID string, stats GitHubStats) error {
	return r.SetField(ctx, profileID, "github", stats)
}
