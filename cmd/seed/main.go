// Command seed loads a demo session and a few songs into the configured
// database so a fresh deployment has something to present.
package main

import (
	"context"
	"log"

	"wtrfll/server/internal/config"
	"wtrfll/server/internal/db"
	lyricsrepo "wtrfll/server/internal/lyrics/repository"
	lyricssvc "wtrfll/server/internal/lyrics/service"
	sessionrepo "wtrfll/server/internal/session/repository"
	sessionsvc "wtrfll/server/internal/session/service"
)

const demoSessionName = "Demo Session"

var songs = []lyricssvc.EntryInput{
	{
		Title:  "Amazing Grace",
		Author: "John Newton",
		ChordPro: "{title: Amazing Grace}\n{key: G}\n" +
			"[G]Amazing [G7]grace, how [C]sweet the [G]sound\n" +
			"That saved a [Em]wretch like [D]me\n" +
			"I [G]once was [G7]lost, but [C]now am [G]found\n" +
			"Was [Em]blind but [D]now I [G]see\n",
	},
	{
		Title:  "How Great Thou Art",
		Author: "Carl Boberg",
		ChordPro: "{title: How Great Thou Art}\n{key: C}\n" +
			"O Lord my [C]God, when I in [F]awesome [C]wonder\n" +
			"Consider [G]all the worlds Thy [C]hands have made\n",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("seed: DATABASE_URL must be set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	store := sessionrepo.NewPostgresRepository(conn)
	if err := seedSession(ctx, store); err != nil {
		log.Fatalf("seed: session: %v", err)
	}

	catalog := lyricssvc.NewCatalogService(
		lyricsrepo.NewPostgresRepository(conn),
		cfg.LyricsFontScaleMin, cfg.LyricsFontScaleMax,
	)
	for _, song := range songs {
		existing, err := catalog.List(ctx, song.Title)
		if err != nil {
			log.Fatalf("seed: list lyrics: %v", err)
		}
		if len(existing) > 0 {
			log.Printf("seed: lyrics %q already present", song.Title)
			continue
		}
		entry, err := catalog.Create(ctx, song)
		if err != nil {
			log.Fatalf("seed: create lyrics %q: %v", song.Title, err)
		}
		log.Printf("seed: lyrics %q (%s)", entry.Title, entry.ID)
	}
}

// seedSession creates the demo session once; re-running seed reprints the
// existing tokens instead of minting another session.
func seedSession(ctx context.Context, store sessionsvc.Store) error {
	query := sessionsvc.NewQueryService(store)
	upcoming, err := query.UpcomingSessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range upcoming {
		if s.Name == demoSessionName {
			log.Printf("seed: session %s already present (code %s)", s.ID, s.ShortCode)
			log.Printf("seed: controller token %s", s.ControllerJoinToken)
			log.Printf("seed: display token    %s", s.DisplayJoinToken)
			return nil
		}
	}

	created, err := sessionsvc.NewLifecycleService(store).CreateSession(ctx, demoSessionName, nil)
	if err != nil {
		return err
	}
	log.Printf("seed: session %s (code %s)", created.ID, created.ShortCode)
	log.Printf("seed: controller token %s", created.ControllerJoinToken)
	log.Printf("seed: display token    %s", created.DisplayJoinToken)
	return nil
}
