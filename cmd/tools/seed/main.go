package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/storage/sqlite"
	"github.com/jnphilipp/computer/pkg/logger"
)

// seedFile is the on-disk layout consumed by this tool. Entities may refer
// to a parent entity by name; parents must appear before their children.
type seedFile struct {
	Entities []seedEntity `json:"entities"`
	Intents  []seedIntent `json:"intents"`
}

type seedEntity struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

type seedIntent struct {
	Name     string        `json:"name"`
	Triggers []seedTrigger `json:"triggers"`
	Answers  []seedAnswer  `json:"answers"`
}

type seedTrigger struct {
	Text     string     `json:"text"`
	Language string     `json:"language"`
	Entities []seedSpan `json:"entities,omitempty"`
}

type seedSpan struct {
	Entity string `json:"entity"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Value  string `json:"value"`
}

type seedAnswer struct {
	Text       string          `json:"text"`
	Language   string          `json:"language"`
	Attributes []seedAttribute `json:"attributes,omitempty"`
}

type seedAttribute struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

func main() {
	var (
		dbPath   = flag.String("db", "./data/computer.db", "Path to the SQLite database")
		seedPath = flag.String("seed", "", "Path to the seed JSON file (required)")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *seedPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(*logLevel, "console", "stdout"); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*dbPath, *seedPath); err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
}

func run(dbPath, seedPath string) error {
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := validate(&seed); err != nil {
		return err
	}

	client, err := sqlite.NewClient(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer client.Close()

	if err := client.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	entityIDs := make(map[string]int64, len(seed.Entities))
	for _, e := range seed.Entities {
		var parentID *int64
		if e.Parent != "" {
			id, ok := entityIDs[e.Parent]
			if !ok {
				return fmt.Errorf("entity %q references unknown parent %q", e.Name, e.Parent)
			}
			parentID = &id
		}
		id, err := client.InsertEntity(e.Name, parentID)
		if err != nil {
			return fmt.Errorf("failed to insert entity %q: %w", e.Name, err)
		}
		entityIDs[e.Name] = id
	}
	logger.Info("Entities seeded", zap.Int("count", len(seed.Entities)))

	var triggerCount, answerCount int
	for _, in := range seed.Intents {
		intentID, err := client.InsertIntent(in.Name)
		if err != nil {
			return fmt.Errorf("failed to insert intent %q: %w", in.Name, err)
		}

		for _, t := range in.Triggers {
			triggerID, err := client.InsertTrigger(t.Text, t.Language, intentID)
			if err != nil {
				return fmt.Errorf("failed to insert trigger %q: %w", t.Text, err)
			}
			for _, s := range t.Entities {
				entityID, ok := entityIDs[s.Entity]
				if !ok {
					return fmt.Errorf("trigger %q references unknown entity %q", t.Text, s.Entity)
				}
				if err := client.InsertTriggerEntity(triggerID, entityID, s.Start, s.End, s.Value); err != nil {
					return fmt.Errorf("failed to insert entity span for trigger %q: %w", t.Text, err)
				}
			}
			triggerCount++
		}

		for _, a := range in.Answers {
			answerID, err := client.InsertAnswer(a.Text, a.Language)
			if err != nil {
				return fmt.Errorf("failed to insert answer %q: %w", a.Text, err)
			}
			if err := client.LinkIntentAnswer(intentID, answerID); err != nil {
				return fmt.Errorf("failed to link answer %q to intent %q: %w", a.Text, in.Name, err)
			}
			for _, attr := range a.Attributes {
				attrID, err := client.InsertAttribute(attr.Key, attr.Value)
				if err != nil {
					return fmt.Errorf("failed to insert attribute %q: %w", attr.Key, err)
				}
				if err := client.LinkAnswerAttribute(answerID, attrID); err != nil {
					return fmt.Errorf("failed to link attribute %q to answer %q: %w", attr.Key, a.Text, err)
				}
			}
			answerCount++
		}
	}

	logger.Info("Seeding complete",
		zap.Int("intents", len(seed.Intents)),
		zap.Int("triggers", triggerCount),
		zap.Int("answers", answerCount))
	return nil
}

// validate checks entity spans against their trigger text before touching
// the database, so a bad seed file fails as a whole.
func validate(seed *seedFile) error {
	for _, in := range seed.Intents {
		for _, t := range in.Triggers {
			for _, s := range t.Entities {
				if s.Start < 0 || s.End < s.Start || s.End > len(t.Text) {
					return fmt.Errorf("trigger %q: span [%d:%d] out of bounds", t.Text, s.Start, s.End)
				}
				if t.Text[s.Start:s.End] != s.Value {
					return fmt.Errorf("trigger %q: span [%d:%d] yields %q, expected %q",
						t.Text, s.Start, s.End, t.Text[s.Start:s.End], s.Value)
				}
			}
		}
	}
	return nil
}
