package datagen

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-etl/internal/datagen/activity"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// Config configures a generated dataset.
type Config struct {
	Songs  int
	Users  int
	Events int
	Days   int

	// Start is the first day of the event log. Defaults to 2018-11-01.
	Start time.Time

	// Seed makes the output reproducible. Zero picks a random seed.
	Seed int64

	// Profile spreads events over the day. Defaults to the evening
	// profile in UTC.
	Profile activity.Profile

	// ProgressInterval is how often to log progress (in events).
	ProgressInterval int64
}

// Stats describes a generated dataset.
type Stats struct {
	Songs   int
	Artists int
	Events  int
	Plays   int
	Files   int
	Bytes   int64
}

var (
	pages       = []string{model.PageNextSong, "Home", "Logout", "Settings", "Help", "About", "Upgrade", "Submit Upgrade"}
	pageWeights = []int{80, 8, 3, 2, 2, 1, 2, 2}
)

type artist struct {
	id        string
	name      string
	location  string
	latitude  *float64
	longitude *float64
}

type user struct {
	id        int
	firstName string
	lastName  string
	gender    string
	level     string
	location  string
	userAgent string
	session   int64
}

// Generator writes synthetic song_data and log_data trees.
type Generator struct {
	cfg   Config
	faker *Faker
	stats Stats
}

// NewGenerator creates a generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Days < 1 {
		cfg.Days = 1
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 10000
	}
	if cfg.Profile == nil {
		cfg.Profile = activity.NewEvening(time.UTC)
	}

	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(uint64(cfg.Seed))
	}
	return &Generator{cfg: cfg, faker: f}
}

// Generate writes the dataset below dir.
func (g *Generator) Generate(ctx context.Context, dir string) (Stats, error) {
	g.stats = Stats{}

	catalog, err := g.writeCatalog(ctx, dir)
	if err != nil {
		return g.stats, err
	}
	if err := g.writeLog(ctx, dir, catalog); err != nil {
		return g.stats, err
	}

	logging.Info().
		Int("songs", g.stats.Songs).
		Int("artists", g.stats.Artists).
		Int("events", g.stats.Events).
		Int("plays", g.stats.Plays).
		Int("files", g.stats.Files).
		Str("size", FormatSize(g.stats.Bytes)).
		Msg("Dataset generated")

	return g.stats, nil
}

func (g *Generator) writeCatalog(ctx context.Context, dir string) ([]model.CatalogRecord, error) {
	f := g.faker

	artists := make([]artist, max(1, g.cfg.Songs*2/3))
	for i := range artists {
		a := artist{id: f.ID("AR", 16), name: f.ArtistName()}
		if f.Chance(0.6) {
			a.location = f.Location()
		}
		if f.Chance(0.4) {
			lat, lon := f.Latitude(), f.Longitude()
			a.latitude, a.longitude = &lat, &lon
		}
		artists[i] = a
	}
	g.stats.Artists = len(artists)

	progress := NewProgressReporter("song_data", int64(g.cfg.Songs), g.cfg.ProgressInterval)
	catalog := make([]model.CatalogRecord, 0, g.cfg.Songs)
	for i := 0; i < g.cfg.Songs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a := artists[i%len(artists)]
		year := int32(0)
		if f.Chance(0.6) {
			year = int32(f.Int(1960, 2010))
		}
		rec := model.CatalogRecord{
			SongID:          strPtr(f.ID("SO", 16)),
			Title:           strPtr(f.SongTitle()),
			ArtistID:        strPtr(a.id),
			ArtistName:      strPtr(a.name),
			ArtistLocation:  strPtr(a.location),
			ArtistLatitude:  a.latitude,
			ArtistLongitude: a.longitude,
			Year:            &year,
			Duration:        floatPtr(f.Float64(120, 420)),
			NumSongs:        int32Ptr(1),
		}

		track := f.ID("TR", 16)
		rel := filepath.Join("song_data", track[2:3], track[3:4], track[4:5], track+".json")
		if err := g.writeJSON(filepath.Join(dir, rel), rec); err != nil {
			return nil, err
		}
		catalog = append(catalog, rec)
		progress.Update(1)
	}
	progress.Done()
	g.stats.Songs = len(catalog)

	return catalog, nil
}

func (g *Generator) writeLog(ctx context.Context, dir string, catalog []model.CatalogRecord) error {
	f := g.faker

	users := make([]*user, g.cfg.Users)
	for i := range users {
		users[i] = &user{
			id:        i + 1,
			firstName: f.FirstName(),
			lastName:  f.LastName(),
			gender:    f.Gender(),
			level:     ChooseWeighted(f, []string{"free", "paid"}, []int{3, 1}),
			location:  f.Location(),
			userAgent: f.UserAgent(),
		}
	}

	progress := NewProgressReporter("log_data", int64(g.cfg.Events), g.cfg.ProgressInterval)
	perDay := g.cfg.Events / g.cfg.Days
	extra := g.cfg.Events % g.cfg.Days
	var session int64 = 1

	for day := 0; day < g.cfg.Days; day++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := perDay
		if day < extra {
			n++
		}
		date := g.cfg.Start.AddDate(0, 0, day)

		offsets := make([]int64, n)
		for i := range offsets {
			offsets[i] = activity.Sample(g.cfg.Profile, date, f.Unit)
		}
		sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

		events := make([]model.EventRecord, 0, n)
		items := make(map[int]int64)
		for _, off := range offsets {
			ts := date.UnixMilli() + off
			u := Choose(f, users)
			if u.session == 0 || f.Chance(0.05) {
				u.session = session
				session++
				items[u.id] = 0
			}
			events = append(events, g.event(u, ts, items[u.id], catalog))
			items[u.id]++
		}

		rel := filepath.Join("log_data", date.Format("2006-01-02")+"-events.json")
		if err := g.writeNDJSON(filepath.Join(dir, rel), events); err != nil {
			return err
		}
		g.stats.Events += len(events)
		progress.Update(int64(len(events)))
	}
	progress.Done()

	return nil
}

// event builds one log entry. A share of entries come from logged out
// visitors, and some plays reference songs missing from the catalog.
func (g *Generator) event(u *user, ts, item int64, catalog []model.CatalogRecord) model.EventRecord {
	f := g.faker

	if f.Chance(0.03) {
		return model.EventRecord{
			Page:          strPtr(ChooseWeighted(f, []string{"Home", "Login", "About"}, []int{6, 3, 1})),
			Ts:            &ts,
			Auth:          strPtr("Logged Out"),
			Level:         strPtr(u.level),
			SessionID:     &u.session,
			ItemInSession: &item,
			UserAgent:     strPtr(u.userAgent),
			Location:      strPtr(u.location),
		}
	}

	page := ChooseWeighted(f, pages, pageWeights)
	if page == "Submit Upgrade" {
		u.level = "paid"
	}

	e := model.EventRecord{
		Page:          &page,
		Ts:            &ts,
		UserID:        model.NewText(fmt.Sprint(u.id)),
		FirstName:     strPtr(u.firstName),
		LastName:      strPtr(u.lastName),
		Gender:        strPtr(u.gender),
		Level:         strPtr(u.level),
		SessionID:     &u.session,
		ItemInSession: &item,
		UserAgent:     strPtr(u.userAgent),
		Location:      strPtr(u.location),
		Auth:          strPtr("Logged In"),
	}

	if page == model.PageNextSong {
		g.stats.Plays++
		if len(catalog) > 0 && f.Chance(0.9) {
			song := Choose(f, catalog)
			e.Artist, e.Song, e.Length = song.ArtistName, song.Title, song.Duration
		} else {
			e.Artist = strPtr(f.ArtistName())
			e.Song = strPtr(f.SongTitle())
			e.Length = floatPtr(f.Float64(120, 420))
		}
	}
	return e
}

func (g *Generator) writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	g.stats.Files++
	g.stats.Bytes += int64(len(data))
	return nil
}

func (g *Generator) writeNDJSON(path string, events []model.EventRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer fh.Close()

	w := bufio.NewWriter(fh)
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	info, err := fh.Stat()
	if err == nil {
		g.stats.Bytes += info.Size()
	}
	g.stats.Files++
	return fh.Close()
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func int32Ptr(v int32) *int32     { return &v }

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("dataset", p.tableName).
			Int64("records", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("dataset", p.tableName).
		Int64("records", p.currentRow).
		Msg("Dataset complete")
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
