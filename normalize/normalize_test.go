package normalize

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/gqlcache/record"
)

// mapSource is a Source backed by a plain map.
type mapSource map[record.Key]*record.Record

func (m mapSource) Get(key record.Key) (*record.Record, bool) {
	r, ok := m[key]
	return r, ok
}

func sourceOf(records []*record.Record) mapSource {
	src := make(mapSource, len(records))
	for _, r := range records {
		if prev, ok := src[r.Key]; ok {
			prev.Merge(r)
			continue
		}
		src[r.Key] = r.Clone()
	}
	return src
}

func heroSelection() SelectionSet {
	character := []Field{Leaf("__typename"), Leaf("id"), Leaf("name")}
	return SelectionSet{
		Object("hero", append(character, Object("friends", character...))...).
			With(map[string]any{"episode": "JEDI"}),
		Leaf("json"),
		Object("stats", Leaf("wins"), Object("rival", Leaf("__typename"), Leaf("id"))),
	}
}

func heroData() map[string]any {
	return map[string]any{
		"hero": map[string]any{
			"__typename": "Droid",
			"id":         "2001",
			"name":       "R2-D2",
			"friends": []any{
				map[string]any{"__typename": "Human", "id": "1000", "name": "Luke Skywalker"},
				nil,
			},
		},
		"json": map[string]any{
			"obj":  map[string]any{"key": "value"},
			"list": []any{0, 1, 2},
		},
		"stats": map[string]any{
			"wins":  3,
			"rival": map[string]any{"__typename": "Human", "id": "1000"},
		},
	}
}

func TestNormalize_ProducesReferenceLinkedRecords(t *testing.T) {
	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, heroSelection(), heroData())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	gotOrder := make([]record.Key, len(records))
	for i, r := range records {
		gotOrder[i] = r.Key
	}
	wantOrder := []record.Key{record.QueryRoot, "Droid:2001", "Human:1000"}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Fatalf("record order mismatch (-want +got):\n%s", diff)
	}

	src := sourceOf(records)
	root := src[record.QueryRoot]

	hero, ok := root.Get(`hero({"episode":"JEDI"})`)
	if !ok || hero.Kind() != record.KindReference || hero.Ref() != "Droid:2001" {
		t.Errorf("root hero = %v, want reference to Droid:2001", hero)
	}

	json, _ := root.Get("json")
	if json.Kind() != record.KindScalar {
		t.Errorf("json kind = %s, want scalar", json.Kind())
	}

	stats, _ := root.Get("stats")
	if stats.Kind() != record.KindObject {
		t.Fatalf("stats kind = %s, want embedded object", stats.Kind())
	}
	if rival := stats.Fields()["rival"]; rival.Ref() != "Human:1000" {
		t.Errorf("stats.rival = %v, want reference to Human:1000", rival)
	}

	friends, _ := src["Droid:2001"].Get("friends")
	if diff := cmp.Diff([]record.Key{"Human:1000", ""}, friends.Refs()); diff != "" {
		t.Errorf("friends mismatch (-want +got):\n%s", diff)
	}

	// Human:1000 appears twice; the second, narrower visit keeps the name.
	if name, ok := src["Human:1000"].Get("name"); !ok || name.ScalarValue() != "Luke Skywalker" {
		t.Errorf("Human:1000 name = %v, want Luke Skywalker", name)
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	data := heroData()
	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, heroSelection(), data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	got, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, heroSelection())
	if err != nil {
		t.Fatalf("Denormalize() error = %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_DetachesFromInput(t *testing.T) {
	data := heroData()
	records, _ := NewNormalizer(nil).Normalize(record.QueryRoot, heroSelection(), data)
	data["json"].(map[string]any)["obj"] = "changed"

	got, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, SelectionSet{Leaf("json")})
	if err != nil {
		t.Fatalf("Denormalize() error = %v", err)
	}
	if diff := cmp.Diff(heroData()["json"], got["json"]); diff != "" {
		t.Errorf("stored json changed with caller data (-want +got):\n%s", diff)
	}
}

func TestNormalize_CyclicReferences(t *testing.T) {
	sel := SelectionSet{
		Object("hero", Leaf("__typename"), Leaf("id"),
			Object("friends", Leaf("__typename"), Leaf("id"),
				Object("friends", Leaf("__typename"), Leaf("id"), Leaf("name")))),
	}
	data := map[string]any{
		"hero": map[string]any{
			"__typename": "Droid", "id": "2001",
			"friends": []any{
				map[string]any{
					"__typename": "Human", "id": "1000",
					"friends": []any{
						map[string]any{"__typename": "Droid", "id": "2001", "name": "R2-D2"},
					},
				},
			},
		},
	}

	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, sel, data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	src := sourceOf(records)
	if len(src) != 3 {
		t.Errorf("records = %d, want 3", len(src))
	}

	got, err := NewDenormalizer().Denormalize(src, record.QueryRoot, sel)
	if err != nil {
		t.Fatalf("Denormalize() error = %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("cyclic round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ArgumentsDoNotCollide(t *testing.T) {
	hero := func(episode string) Field {
		return Object("hero", Leaf("name")).With(map[string]any{"episode": episode}).As(episode)
	}
	sel := SelectionSet{hero("JEDI"), hero("EMPIRE")}
	data := map[string]any{
		"JEDI":   map[string]any{"name": "R2-D2"},
		"EMPIRE": map[string]any{"name": "Luke"},
	}

	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, sel, data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	root := records[0]
	if len(root.Fields) != 2 {
		t.Fatalf("root fields = %v, want two distinct hero fields", root.Fields)
	}

	got, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, sel)
	if err != nil {
		t.Fatalf("Denormalize() error = %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NestedListsOfEmbeddedObjects(t *testing.T) {
	sel := SelectionSet{Object("matrix", Leaf("value"))}
	data := map[string]any{
		"matrix": []any{
			[]any{map[string]any{"value": 1}, nil},
			[]any{},
		},
	}

	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, sel, data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want only the root", len(records))
	}

	got, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, sel)
	if err != nil {
		t.Fatalf("Denormalize() error = %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ShapeMismatch(t *testing.T) {
	sel := SelectionSet{Object("hero", Leaf("name"))}
	_, err := NewNormalizer(nil).Normalize(record.QueryRoot, sel, map[string]any{"hero": "R2-D2"})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Normalize() error = %v, want ErrShapeMismatch", err)
	}
}

func TestNormalize_StaticTypeName(t *testing.T) {
	sel := SelectionSet{Object("viewer", Leaf("id"), Leaf("login")).OfType("User")}
	data := map[string]any{"viewer": map[string]any{"id": "u1", "login": "octocat"}}

	records, err := NewNormalizer(nil).Normalize(record.QueryRoot, sel, data)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if _, ok := sourceOf(records)["User:u1"]; !ok {
		t.Error("record User:u1 not produced from static type name")
	}
}

func TestDenormalize_MissingRecord(t *testing.T) {
	records, _ := NewNormalizer(nil).Normalize(record.QueryRoot, heroSelection(), heroData())
	src := sourceOf(records)
	delete(src, "Human:1000")

	got, err := NewDenormalizer().Denormalize(src, record.QueryRoot, heroSelection())
	if got != nil {
		t.Errorf("Denormalize() returned partial data %v", got)
	}
	var miss *CacheMissError
	if !errors.As(err, &miss) {
		t.Fatalf("Denormalize() error = %v, want *CacheMissError", err)
	}
	if miss.Key != "Human:1000" || miss.Field != "" {
		t.Errorf("miss = %+v, want record Human:1000", miss)
	}
	if diff := cmp.Diff([]string{"hero", "friends", "0"}, miss.Path); diff != "" {
		t.Errorf("miss path mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, ErrCacheMiss) {
		t.Error("errors.Is(err, ErrCacheMiss) = false")
	}
}

func TestDenormalize_MissingField(t *testing.T) {
	records, _ := NewNormalizer(nil).Normalize(record.QueryRoot, heroSelection(), heroData())

	sel := SelectionSet{Object("hero", Leaf("name"), Leaf("primaryFunction")).With(map[string]any{"episode": "JEDI"})}
	_, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, sel)

	var miss *CacheMissError
	if !errors.As(err, &miss) {
		t.Fatalf("Denormalize() error = %v, want *CacheMissError", err)
	}
	if miss.Key != "Droid:2001" || miss.Field != "primaryFunction" {
		t.Errorf("miss = %+v, want field primaryFunction of Droid:2001", miss)
	}
	if got := miss.PathString(); got != "$.hero.primaryFunction" {
		t.Errorf("PathString() = %q", got)
	}
}

func TestDenormalize_EmptyStore(t *testing.T) {
	_, err := NewDenormalizer().Denormalize(mapSource{}, record.QueryRoot, heroSelection())
	var miss *CacheMissError
	if !errors.As(err, &miss) || miss.Key != record.QueryRoot {
		t.Fatalf("Denormalize() error = %v, want miss on QUERY_ROOT", err)
	}
	if got := miss.PathString(); got != "$" {
		t.Errorf("PathString() = %q, want $", got)
	}
}

func TestDenormalize_LeafStoredAsObjectIsMiss(t *testing.T) {
	records, _ := NewNormalizer(nil).Normalize(record.QueryRoot, SelectionSet{Leaf("json")}, heroData())

	_, err := NewDenormalizer().Denormalize(sourceOf(records), record.QueryRoot, SelectionSet{Object("json", Leaf("obj"))})
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Denormalize() error = %v, want cache miss", err)
	}
}

func TestCacheMissError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *CacheMissError
		want string
	}{
		{"record", &CacheMissError{Key: "Hero:1", Path: []string{"hero"}}, `cache miss: record "Hero:1" not found at $.hero`},
		{"field", &CacheMissError{Key: "Hero:1", Field: "name", Path: []string{"hero", "name"}}, `cache miss: field "name" of record "Hero:1" not found at $.hero.name`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
