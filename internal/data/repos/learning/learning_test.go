package learning

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/skillsprint-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillsprint-backend/internal/domain/learning"
)

func TestLearningPathRepo_GetWithContent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)

	seeded := testutil.SeedPath(t, tx, 2, 3)
	repo := NewLearningPathRepo(db, testutil.Logger(t))

	got, err := repo.GetWithContent(dbc, seeded.ID)
	if err != nil {
		t.Fatalf("GetWithContent: %v", err)
	}
	if len(got.Modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(got.Modules))
	}
	if got.Modules[0].OrderIndex != 0 || len(got.Modules[0].Sprints) != 2 || len(got.Modules[1].Sprints) != 3 {
		t.Fatalf("unexpected module layout: %+v", got.Modules)
	}
	for i, s := range got.Modules[1].Sprints {
		if s.OrderIndex != i {
			t.Fatalf("sprint %d out of order: order_index=%d", i, s.OrderIndex)
		}
	}

	if _, err := repo.GetWithContent(dbc, uuid.New()); err == nil {
		t.Fatalf("GetWithContent unknown: expected error")
	}
}

func TestKnowledgeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)
	repo := NewKnowledgeRepo(db, testutil.Logger(t))

	if err := repo.CreateAreas(dbc, []*types.KnowledgeArea{{Name: "Genetics"}, {Name: "Ecology"}}); err != nil {
		t.Fatalf("CreateAreas: %v", err)
	}
	areas, err := repo.ListAreas(dbc)
	if err != nil || len(areas) != 2 || areas[0].Name != "Ecology" {
		t.Fatalf("ListAreas: len=%d err=%v", len(areas), err)
	}

	userID := uuid.New()
	if err := repo.CreateProficiency(dbc, []*types.UserKnowledgeProficiency{
		{UserID: userID, KnowledgeAreaID: areas[0].ID, ProficiencyScore: 0.9},
		{UserID: userID, KnowledgeAreaID: areas[1].ID, ProficiencyScore: 0.2},
	}); err != nil {
		t.Fatalf("CreateProficiency: %v", err)
	}

	rows, err := repo.ListProficiency(dbc, userID)
	if err != nil {
		t.Fatalf("ListProficiency: %v", err)
	}
	if len(rows) != 2 || rows[0].ProficiencyScore != 0.2 {
		t.Fatalf("ListProficiency: unexpected rows %+v", rows)
	}
	if rows[0].KnowledgeArea == nil || rows[0].KnowledgeArea.Name != "Genetics" {
		t.Fatalf("ListProficiency: knowledge area not preloaded")
	}

	other, err := repo.ListProficiency(dbc, uuid.New())
	if err != nil || len(other) != 0 {
		t.Fatalf("ListProficiency other user: len=%d err=%v", len(other), err)
	}
}

func TestSprintProgressRepo_Summary(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)
	repo := NewSprintProgressRepo(db, testutil.Logger(t))

	userID := uuid.New()
	now := time.Now()
	a, b := 80.0, 60.0
	if err := repo.Create(dbc, []*types.UserSprintProgress{
		{UserID: userID, SprintID: uuid.New(), Completed: true, Score: &a, CompletedAt: &now},
		{UserID: userID, SprintID: uuid.New(), Completed: true, Score: &b, CompletedAt: &now},
		{UserID: userID, SprintID: uuid.New(), Completed: false},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sum, err := repo.Summary(dbc, userID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.CompletedSprints != 2 || math.Abs(sum.AverageScore-70) > 1e-9 {
		t.Fatalf("Summary: got %+v", sum)
	}

	empty, err := repo.Summary(dbc, uuid.New())
	if err != nil || empty.CompletedSprints != 0 || empty.AverageScore != 0 {
		t.Fatalf("Summary empty: got %+v err=%v", empty, err)
	}
}

func TestPersonalizedPathRepo_CreateHierarchy(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := testutil.TxCtx(tx)
	repo := NewPersonalizedPathRepo(db, testutil.Logger(t))

	path := &types.PersonalizedLearningPath{UserID: uuid.New(), Title: "Intro to Biology (Personalized)", IsCustom: true}
	if err := repo.CreatePath(dbc, path); err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	mod := &types.PersonalizedModule{PersonalizedPathID: path.ID, Title: "Reinforcement: Focus Areas", IsGenerated: true}
	if err := repo.CreateModule(dbc, mod); err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	sprint := &types.PersonalizedSprint{PersonalizedModuleID: mod.ID, Title: "Genetics Review", IsGenerated: true}
	if err := repo.CreateSprints(dbc, []*types.PersonalizedSprint{sprint}); err != nil {
		t.Fatalf("CreateSprints: %v", err)
	}
	q := &types.PersonalizedQuizQuestion{
		PersonalizedSprintID: sprint.ID,
		Question:             "What carries genetic information?",
		Options:              datatypes.JSON([]byte(`["DNA","ATP"]`)),
		CorrectAnswer:        0,
		IsGenerated:          true,
	}
	if err := repo.CreateQuizQuestions(dbc, []*types.PersonalizedQuizQuestion{q}); err != nil {
		t.Fatalf("CreateQuizQuestions: %v", err)
	}

	var count int64
	if err := tx.Model(&types.PersonalizedQuizQuestion{}).Where("personalized_sprint_id = ?", sprint.ID).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("quiz count: %d err=%v", count, err)
	}
}
