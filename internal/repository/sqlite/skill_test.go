package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
)

// =========================================================================
// ADD EXPERIENCE TESTS
// =========================================================================

func TestAddExperience_FirstTouchCreatesRecord(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	progress, err := db.AddExperience(context.Background(), user.ID, model.SkillSecurity, 10)
	if err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}

	if progress.ExperiencePoints != 10 {
		t.Errorf("xp = %d, want 10", progress.ExperiencePoints)
	}
	if progress.Level != 1 {
		t.Errorf("level = %d, want 1", progress.Level)
	}
	if progress.SkillArea != model.SkillSecurity {
		t.Errorf("area = %q, want %q", progress.SkillArea, model.SkillSecurity)
	}
}

func TestAddExperience_FirstGrantCanSkipLevels(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	// 149 XP with a 50 XP threshold: floor(149/50)+1 = 3, straight away.
	progress, err := db.AddExperience(context.Background(), user.ID, model.SkillAlgorithms, 149)
	if err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}
	if progress.Level != 3 {
		t.Errorf("level = %d, want 3", progress.Level)
	}
}

func TestAddExperience_Accumulates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	if _, err := db.AddExperience(ctx, user.ID, model.SkillPythonBasics, 30); err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}
	progress, err := db.AddExperience(ctx, user.ID, model.SkillPythonBasics, 30)
	if err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}

	if progress.ExperiencePoints != 60 {
		t.Errorf("xp = %d, want 60", progress.ExperiencePoints)
	}
	if progress.Level != 2 {
		t.Errorf("level = %d, want 2 (crossed the 50 XP threshold)", progress.Level)
	}
}

func TestAddExperience_LevelNeverDecreases(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	if _, err := db.AddExperience(ctx, user.ID, model.SkillTesting, 120); err != nil {
		t.Fatalf("AddExperience(120) error = %v", err)
	}

	progress, err := db.AddExperience(ctx, user.ID, model.SkillTesting, -100)
	if err != nil {
		t.Fatalf("AddExperience(-100) error = %v", err)
	}

	if progress.ExperiencePoints != 20 {
		t.Errorf("xp = %d, want 20", progress.ExperiencePoints)
	}
	if progress.Level != 3 {
		t.Errorf("level = %d, want 3 (high-water mark)", progress.Level)
	}
}

func TestAddExperience_AreasAreIndependent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	if _, err := db.AddExperience(ctx, user.ID, model.SkillSecurity, 80); err != nil {
		t.Fatalf("AddExperience(security) error = %v", err)
	}
	perf, err := db.AddExperience(ctx, user.ID, model.SkillPerformance, 10)
	if err != nil {
		t.Fatalf("AddExperience(performance) error = %v", err)
	}

	// XP in one area must not leak into another.
	if perf.ExperiencePoints != 10 || perf.Level != 1 {
		t.Errorf("performance = %d xp / level %d, want 10 / 1",
			perf.ExperiencePoints, perf.Level)
	}
}

func TestAddExperience_InvalidArea(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	_, err := db.AddExperience(context.Background(), user.ID, model.SkillArea("underwater_basket_weaving"), 10)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAddExperience_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	_, err := db.AddExperience(context.Background(), "ghost", model.SkillSecurity, 10)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListSkillProgress(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	if _, err := db.AddExperience(ctx, user.ID, model.SkillSecurity, 10); err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}
	if _, err := db.AddExperience(ctx, user.ID, model.SkillCodeStyle, 20); err != nil {
		t.Fatalf("AddExperience() error = %v", err)
	}

	progress, err := db.ListSkillProgress(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListSkillProgress() error = %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("got %d records, want 2", len(progress))
	}
	// Ordered by area name: code_style before security.
	if progress[0].SkillArea != model.SkillCodeStyle || progress[1].SkillArea != model.SkillSecurity {
		t.Errorf("order = [%s, %s], want [code_style, security]",
			progress[0].SkillArea, progress[1].SkillArea)
	}
}

func TestListSkillProgress_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)

	progress, err := db.ListSkillProgress(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSkillProgress() error = %v", err)
	}
	if len(progress) != 0 {
		t.Errorf("got %d records, want 0", len(progress))
	}
}
