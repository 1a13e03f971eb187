package services

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
)

func newDatasetService(t *testing.T) (*testEnv, DatasetService) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewDatasetService(env.db, env.intents, env.patterns, env.responses, env.log)
	return env, svc
}

func greetingInput() IntentInput {
	return IntentInput{
		Tag:       "greeting",
		Patterns:  []string{"hi", "hello", "hey"},
		Responses: []string{"Hello!", "Hi there!"},
	}
}

func TestCreateIntent(t *testing.T) {
	_, svc := newDatasetService(t)

	intent, err := svc.Create(testDC(), greetingInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if intent.Tag != "greeting" {
		t.Fatalf("tag: want=greeting got=%q", intent.Tag)
	}
	if len(intent.Patterns) != 3 || len(intent.Responses) != 2 {
		t.Fatalf("children: want 3 patterns 2 responses, got %d/%d", len(intent.Patterns), len(intent.Responses))
	}
}

func TestCreateIntentValidation(t *testing.T) {
	_, svc := newDatasetService(t)

	cases := []IntentInput{
		{Tag: "", Patterns: []string{"hi"}, Responses: []string{"yo"}},
		{Tag: "x", Patterns: nil, Responses: []string{"yo"}},
		{Tag: "x", Patterns: []string{"hi"}, Responses: nil},
	}
	for i, input := range cases {
		if _, err := svc.Create(testDC(), input); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("case %d: want ErrInvalidArgument got %v", i, err)
		}
	}
}

func TestCreateDuplicateTag(t *testing.T) {
	_, svc := newDatasetService(t)

	if _, err := svc.Create(testDC(), greetingInput()); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := svc.Create(testDC(), greetingInput()); !errors.Is(err, pkgerrors.ErrDuplicateTag) {
		t.Fatalf("want ErrDuplicateTag got %v", err)
	}

	// Nothing partial was written for the rejected intent.
	all, err := svc.List(testDC())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("want 1 intent after duplicate rejection, got %d", len(all))
	}
}

func TestUpdateReplacesChildSets(t *testing.T) {
	_, svc := newDatasetService(t)

	created, err := svc.Create(testDC(), greetingInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newPatterns := []string{"good morning", "good evening"}
	updated, err := svc.Update(testDC(), created.ID, IntentUpdate{Patterns: &newPatterns})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Patterns) != 2 {
		t.Fatalf("patterns should be fully replaced: want=2 got=%d", len(updated.Patterns))
	}
	got := []string{updated.Patterns[0].PatternText, updated.Patterns[1].PatternText}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"good evening", "good morning"}) {
		t.Fatalf("replaced patterns: got=%v", got)
	}
	// Responses untouched by a patterns-only update.
	if len(updated.Responses) != 2 {
		t.Fatalf("responses should survive: want=2 got=%d", len(updated.Responses))
	}
}

func TestUpdateTagCollision(t *testing.T) {
	_, svc := newDatasetService(t)

	if _, err := svc.Create(testDC(), greetingInput()); err != nil {
		t.Fatalf("Create greeting: %v", err)
	}
	other, err := svc.Create(testDC(), IntentInput{
		Tag:       "goodbye",
		Patterns:  []string{"bye"},
		Responses: []string{"See you!"},
	})
	if err != nil {
		t.Fatalf("Create goodbye: %v", err)
	}

	tag := "greeting"
	if _, err := svc.Update(testDC(), other.ID, IntentUpdate{Tag: &tag}); !errors.Is(err, pkgerrors.ErrDuplicateTag) {
		t.Fatalf("want ErrDuplicateTag got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	env, svc := newDatasetService(t)

	keep, err := svc.Create(testDC(), greetingInput())
	if err != nil {
		t.Fatalf("Create keep: %v", err)
	}
	gone, err := svc.Create(testDC(), IntentInput{
		Tag:       "goodbye",
		Patterns:  []string{"bye", "see you"},
		Responses: []string{"Bye!"},
	})
	if err != nil {
		t.Fatalf("Create gone: %v", err)
	}

	if err := svc.Delete(testDC(), gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(testDC(), gone.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("deleted intent should be gone, got %v", err)
	}

	var patternCount int64
	if err := env.db.Model(&domain.Pattern{}).Count(&patternCount).Error; err != nil {
		t.Fatalf("count patterns: %v", err)
	}
	if patternCount != 3 {
		t.Fatalf("only the deleted intent's patterns should be removed: want=3 got=%d", patternCount)
	}
	kept, err := svc.Get(testDC(), keep.ID)
	if err != nil {
		t.Fatalf("Get keep: %v", err)
	}
	if len(kept.Patterns) != 3 || len(kept.Responses) != 2 {
		t.Fatalf("surviving intent lost children: %d/%d", len(kept.Patterns), len(kept.Responses))
	}
}

func TestDeleteMissingIntent(t *testing.T) {
	_, svc := newDatasetService(t)
	if err := svc.Delete(testDC(), uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestAddPattern(t *testing.T) {
	_, svc := newDatasetService(t)

	created, err := svc.Create(testDC(), greetingInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	pattern, err := svc.AddPattern(testDC(), created.ID, "howdy")
	if err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if pattern.PatternText != "howdy" {
		t.Fatalf("pattern text: want=howdy got=%q", pattern.PatternText)
	}

	intent, err := svc.Get(testDC(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(intent.Patterns) != 4 {
		t.Fatalf("pattern count after append: want=4 got=%d", len(intent.Patterns))
	}
}

func TestImportSkipsExistingTags(t *testing.T) {
	_, svc := newDatasetService(t)

	if _, err := svc.Create(testDC(), greetingInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	inserted, err := svc.Import(testDC(), ExchangeDocument{Intents: []ExchangeIntent{
		{Tag: "greeting", Patterns: []string{"shadowed"}, Responses: []string{"shadowed"}},
		{Tag: "thanks", Patterns: []string{"thank you"}, Responses: []string{"You're welcome!"}},
	}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted: want=1 got=%d", inserted)
	}

	// The existing intent kept its original children.
	all, err := svc.List(testDC())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, intent := range all {
		if intent.Tag == "greeting" && len(intent.Patterns) != 3 {
			t.Fatalf("existing greeting should be untouched, got %d patterns", len(intent.Patterns))
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	_, svc := newDatasetService(t)

	if _, err := svc.Create(testDC(), greetingInput()); err != nil {
		t.Fatalf("Create greeting: %v", err)
	}
	if _, err := svc.Create(testDC(), IntentInput{
		Tag:       "goodbye",
		Patterns:  []string{"bye", "see you", "goodbye"},
		Responses: []string{"Bye!"},
	}); err != nil {
		t.Fatalf("Create goodbye: %v", err)
	}

	doc, err := svc.Export(testDC())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Import into a fresh store and export again.
	env2 := newTestEnv(t)
	svc2 := NewDatasetService(env2.db, env2.intents, env2.patterns, env2.responses, env2.log)
	if _, err := svc2.Import(testDC(), doc); err != nil {
		t.Fatalf("Import: %v", err)
	}
	doc2, err := svc2.Export(testDC())
	if err != nil {
		t.Fatalf("Export 2: %v", err)
	}

	if !reflect.DeepEqual(canonicalize(doc), canonicalize(doc2)) {
		t.Fatalf("round trip mismatch:\nwant=%v\ngot=%v", canonicalize(doc), canonicalize(doc2))
	}
}

// canonicalize sorts the exchange document so comparisons ignore order.
func canonicalize(doc ExchangeDocument) ExchangeDocument {
	out := ExchangeDocument{Intents: make([]ExchangeIntent, len(doc.Intents))}
	copy(out.Intents, doc.Intents)
	for i := range out.Intents {
		sort.Strings(out.Intents[i].Patterns)
		sort.Strings(out.Intents[i].Responses)
	}
	sort.Slice(out.Intents, func(a, b int) bool { return out.Intents[a].Tag < out.Intents[b].Tag })
	return out
}
