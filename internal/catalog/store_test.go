package catalog

import (
	"errors"
	"testing"
)

func testMedia() *Media {
	return &Media{
		Title:      "Show",
		Image:      "http://img/poster.jpg",
		Background: "http://img/poster.jpg",
		Synopsis:   "sinopse",
		CategoryID: CategoryID(TypeSerie),
		Type:       TypeSerie,
		Directory:  "show",
	}
}

func TestStore_AddMedia(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	if m.ID == 0 {
		t.Error("ID should be set after AddMedia")
	}

	got, err := store.GetMedia(m.ID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.Title != "Show" || got.Type != TypeSerie || got.Views != 0 {
		t.Errorf("GetMedia = %+v", got)
	}
}

func TestStore_GetMedia_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.GetMedia(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMedia error = %v, want ErrNotFound", err)
	}
}

func TestStore_FindMediaByTitleType(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	got, err := store.FindMediaByTitleType("Show", TypeSerie)
	if err != nil {
		t.Fatalf("FindMediaByTitleType: %v", err)
	}
	if got == nil || got.ID != m.ID {
		t.Errorf("FindMediaByTitleType = %+v, want id %d", got, m.ID)
	}

	// Same title, different type: no match.
	got, err = store.FindMediaByTitleType("Show", TypeFilme)
	if err != nil {
		t.Fatalf("FindMediaByTitleType: %v", err)
	}
	if got != nil {
		t.Errorf("FindMediaByTitleType for wrong type = %+v, want nil", got)
	}
}

func TestTx_FindOrCreateSeason(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	se, created, err := tx.FindOrCreateSeason(m.ID, "1ª Temporada", "temporada-1")
	if err != nil {
		t.Fatalf("FindOrCreateSeason: %v", err)
	}
	if !created || se.ID == 0 {
		t.Errorf("first call: created = %v, id = %d", created, se.ID)
	}

	again, created, err := tx.FindOrCreateSeason(m.ID, "1ª Temporada", "temporada-1")
	if err != nil {
		t.Fatalf("FindOrCreateSeason: %v", err)
	}
	if created || again.ID != se.ID {
		t.Errorf("second call: created = %v, id = %d, want existing %d", created, again.ID, se.ID)
	}
}

func TestTx_FindOrCreateEpisode(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	se, _, err := tx.FindOrCreateSeason(m.ID, "1ª Temporada", "temporada-1")
	if err != nil {
		t.Fatalf("FindOrCreateSeason: %v", err)
	}

	ep, created, err := tx.FindOrCreateEpisode(m.ID, se.ID, 2, "Episódio 02", "episodio-02")
	if err != nil {
		t.Fatalf("FindOrCreateEpisode: %v", err)
	}
	if !created || ep.ID == 0 {
		t.Errorf("first call: created = %v, id = %d", created, ep.ID)
	}

	again, created, err := tx.FindOrCreateEpisode(m.ID, se.ID, 2, "Episódio 02", "episodio-02")
	if err != nil {
		t.Fatalf("FindOrCreateEpisode: %v", err)
	}
	if created || again.ID != ep.ID {
		t.Errorf("second call: created = %v, id = %d, want existing %d", created, again.ID, ep.ID)
	}
}

func TestStore_FindPlayerByURL(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	p := &Player{
		MediaID: m.ID,
		Title:   "Show",
		URL:     "http://example.com/a",
		Kind:    "iframe",
		Audio:   "dublado",
		Access:  "gratis",
	}
	if err := store.AddPlayer(p); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	got, err := store.FindPlayerByURL("http://example.com/a")
	if err != nil {
		t.Fatalf("FindPlayerByURL: %v", err)
	}
	if got == nil || got.MediaID != m.ID {
		t.Errorf("FindPlayerByURL = %+v", got)
	}
	if got.SeasonID != nil || got.EpisodeID != nil {
		t.Errorf("season/episode ids should be nil for non-serial player: %+v", got)
	}

	got, err = store.FindPlayerByURL("http://example.com/missing")
	if err != nil {
		t.Fatalf("FindPlayerByURL: %v", err)
	}
	if got != nil {
		t.Errorf("missing URL should return nil, got %+v", got)
	}
}

func TestStore_PlayerExists(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	p := &Player{MediaID: m.ID, Title: "Show", URL: "http://example.com/a", Kind: "iframe", Audio: "dublado", Access: "gratis"}
	if err := store.AddPlayer(p); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	ok, err := store.PlayerExists(m.ID, "http://example.com/a")
	if err != nil {
		t.Fatalf("PlayerExists: %v", err)
	}
	if !ok {
		t.Error("PlayerExists = false, want true")
	}

	ok, err = store.PlayerExists(m.ID+1, "http://example.com/a")
	if err != nil {
		t.Fatalf("PlayerExists: %v", err)
	}
	if ok {
		t.Error("PlayerExists for other media = true, want false")
	}
}

func TestStore_DeleteMediaCascade(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	se := &Season{MediaID: m.ID, Title: "1ª Temporada", Directory: "temporada-1"}
	if err := store.AddSeason(se); err != nil {
		t.Fatalf("AddSeason: %v", err)
	}
	ep := &Episode{MediaID: m.ID, SeasonID: se.ID, Title: "Episódio 01", Directory: "episodio-01", Number: 1}
	if err := store.AddEpisode(ep); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}
	p := &Player{MediaID: m.ID, SeasonID: ptr(se.ID), EpisodeID: ptr(ep.ID), Title: "Show - S01E01", URL: "http://example.com/a", Kind: "iframe", Audio: "dublado", Access: "gratis"}
	if err := store.AddPlayer(p); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	if err := store.DeleteMediaCascade(m.ID); err != nil {
		t.Fatalf("DeleteMediaCascade: %v", err)
	}

	if _, err := store.GetMedia(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("media should be gone, err = %v", err)
	}
	for _, table := range []string{"seasons", "episodes", "players"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s rows remaining = %d, want 0", table, n)
		}
	}
}

func TestStore_ListMediaTitles(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	first := testMedia()
	first.Title = "The Show"
	if err := store.AddMedia(first); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	second := testMedia()
	second.Title = "Época"
	if err := store.AddMedia(second); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	titles, err := store.ListMediaTitles()
	if err != nil {
		t.Fatalf("ListMediaTitles: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("len(titles) = %d, want 2", len(titles))
	}
	if titles[0].ID != first.ID || titles[0].Title != "The Show" {
		t.Errorf("titles[0] = %+v, want {%d The Show}", titles[0], first.ID)
	}
	if titles[1].ID != second.ID || titles[1].Title != "Época" {
		t.Errorf("titles[1] = %+v, want {%d Época}", titles[1], second.ID)
	}
}

func TestCoarseType(t *testing.T) {
	tests := []struct {
		group string
		want  ContentType
	}{
		{"Filmes HD", TypeFilme},
		{"FILMES", TypeFilme},
		{"Series", TypeSerie},
		{"Séries Legendadas", TypeSerie},
		{"Infantil", TypeInfantil},
		{"Esportes", TypeCanal},
		{"", TypeCanal},
	}
	for _, tt := range tests {
		if got := CoarseType(tt.group); got != tt.want {
			t.Errorf("CoarseType(%q) = %v, want %v", tt.group, got, tt.want)
		}
	}
}

func TestCategoryID(t *testing.T) {
	if got := CategoryID(TypeFilme); got != 1 {
		t.Errorf("CategoryID(filme) = %d, want 1", got)
	}
	if got := CategoryID(TypeSerie); got != 17 {
		t.Errorf("CategoryID(serie) = %d, want 17", got)
	}
	if got := CategoryID(ContentType("unknown")); got != 38 {
		t.Errorf("CategoryID(unknown) = %d, want fallback 38", got)
	}
}

func TestStore_FindDuplicatePlayers(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m1 := testMedia()
	if err := store.AddMedia(m1); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	m2 := testMedia()
	if err := store.AddMedia(m2); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	for _, mediaID := range []int64{m1.ID, m2.ID} {
		p := &Player{MediaID: mediaID, Title: "Show", URL: "http://example.com/a", Kind: "iframe", Audio: "dublado", Access: "gratis"}
		if err := store.AddPlayer(p); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
	unique := &Player{MediaID: m1.ID, Title: "Show", URL: "http://example.com/b", Kind: "iframe", Audio: "dublado", Access: "gratis"}
	if err := store.AddPlayer(unique); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	dups, err := store.FindDuplicatePlayers()
	if err != nil {
		t.Fatalf("FindDuplicatePlayers: %v", err)
	}
	if len(dups) != 2 {
		t.Fatalf("len(dups) = %d, want 2", len(dups))
	}
	for _, d := range dups {
		if d.URL != "http://example.com/a" || d.Title != "Show" || d.Type != TypeSerie {
			t.Errorf("duplicate row = %+v", d)
		}
	}
	if dups[0].ID >= dups[1].ID {
		t.Errorf("rows not ordered by id: %d, %d", dups[0].ID, dups[1].ID)
	}
	if dups[0].MediaID != m1.ID || dups[1].MediaID != m2.ID {
		t.Errorf("media ids = %d, %d, want %d, %d", dups[0].MediaID, dups[1].MediaID, m1.ID, m2.ID)
	}
}

func TestStore_DeletePlayer(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := testMedia()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	p := &Player{MediaID: m.ID, Title: "Show", URL: "http://example.com/a", Kind: "iframe", Audio: "dublado", Access: "gratis"}
	if err := store.AddPlayer(p); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	if err := store.DeletePlayer(p.ID); err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	got, err := store.FindPlayerByURL("http://example.com/a")
	if err != nil {
		t.Fatalf("FindPlayerByURL: %v", err)
	}
	if got != nil {
		t.Errorf("player still present after delete: %+v", got)
	}
}
