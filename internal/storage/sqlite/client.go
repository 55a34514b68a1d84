package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/storage/models"
	"github.com/jnphilipp/computer/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

// New wraps an existing handle. Used by tests.
func New(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS intents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		parent_id INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (parent_id) REFERENCES entities(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS triggers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		language TEXT NOT NULL,
		intent_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE (text, language),
		FOREIGN KEY (intent_id) REFERENCES intents(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_triggers_language ON triggers(language);

	CREATE TABLE IF NOT EXISTS trigger_entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trigger_id INTEGER NOT NULL,
		entity_id INTEGER NOT NULL,
		start_pos INTEGER NOT NULL,
		end_pos INTEGER NOT NULL,
		value TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (trigger_id) REFERENCES triggers(id) ON DELETE CASCADE,
		FOREIGN KEY (entity_id) REFERENCES entities(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_trigger_entities_entity ON trigger_entities(entity_id);

	CREATE TABLE IF NOT EXISTS attributes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		value TEXT,
		created_at INTEGER NOT NULL,
		UNIQUE (key, value)
	);
	CREATE INDEX IF NOT EXISTS idx_attributes_key ON attributes(key);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE (text, language)
	);
	CREATE INDEX IF NOT EXISTS idx_answers_language ON answers(language);

	CREATE TABLE IF NOT EXISTS answer_attributes (
		answer_id INTEGER NOT NULL,
		attribute_id INTEGER NOT NULL,
		PRIMARY KEY (answer_id, attribute_id),
		FOREIGN KEY (answer_id) REFERENCES answers(id) ON DELETE CASCADE,
		FOREIGN KEY (attribute_id) REFERENCES attributes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS intent_answers (
		intent_id INTEGER NOT NULL,
		answer_id INTEGER NOT NULL,
		PRIMARY KEY (intent_id, answer_id),
		FOREIGN KEY (intent_id) REFERENCES intents(id) ON DELETE CASCADE,
		FOREIGN KEY (answer_id) REFERENCES answers(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS nlu_requests (
		id TEXT PRIMARY KEY,
		params TEXT NOT NULL,
		model_output TEXT,
		properties TEXT,
		answer TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_nlu_requests_created ON nlu_requests(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// AttributesByKey returns all attribute rows with the given key.
func (c *Client) AttributesByKey(key string) ([]models.Attribute, error) {
	query := `SELECT id, key, value FROM attributes WHERE key = ? ORDER BY id`

	rows, err := c.db.Query(query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes: %w", err)
	}
	defer rows.Close()

	var attrs []models.Attribute
	for rows.Next() {
		var a models.Attribute
		if err := rows.Scan(&a.ID, &a.Key, &a.Value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		attrs = append(attrs, a)
	}

	return attrs, rows.Err()
}

// TriggerEntityValues returns the annotated span values of all triggers in
// the given language whose entity has the given name.
func (c *Client) TriggerEntityValues(entityName, language string) ([]string, error) {
	query := `
		SELECT te.value
		FROM trigger_entities te
		JOIN entities e ON e.id = te.entity_id
		JOIN triggers t ON t.id = te.trigger_id
		WHERE e.name = ? AND t.language = ?
		ORDER BY te.id
	`

	rows, err := c.db.Query(query, entityName, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger entities: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// Answers returns the answers of an intent in a language whose attribute set
// equals exactly the given ids.
func (c *Client) Answers(intent, language string, attributeIDs []int64) ([]models.Answer, error) {
	query := `
		SELECT a.id, a.text, a.language
		FROM answers a
		JOIN intent_answers ia ON ia.answer_id = a.id
		JOIN intents i ON i.id = ia.intent_id
		WHERE i.name = ? AND a.language = ?
		AND (SELECT COUNT(*) FROM answer_attributes aa WHERE aa.answer_id = a.id) = ?
	`

	args := []interface{}{intent, language, len(attributeIDs)}
	if len(attributeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(attributeIDs)), ",")
		query += fmt.Sprintf(`AND (SELECT COUNT(*) FROM answer_attributes aa
			WHERE aa.answer_id = a.id AND aa.attribute_id IN (%s)) = ?
		`, placeholders)
		for _, id := range attributeIDs {
			args = append(args, id)
		}
		args = append(args, len(attributeIDs))
	}
	query += "ORDER BY a.id"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	defer rows.Close()

	return scanAnswers(rows)
}

// FallbackAnswers returns the answers of the reserved fallback intent in the
// given language.
func (c *Client) FallbackAnswers(language string) ([]models.Answer, error) {
	query := `
		SELECT a.id, a.text, a.language
		FROM answers a
		JOIN intent_answers ia ON ia.answer_id = a.id
		JOIN intents i ON i.id = ia.intent_id
		WHERE i.name = ? AND a.language = ?
		ORDER BY a.id
	`

	rows, err := c.db.Query(query, "fallback", language)
	if err != nil {
		return nil, fmt.Errorf("failed to get fallback answers: %w", err)
	}
	defer rows.Close()

	return scanAnswers(rows)
}

func scanAnswers(rows *sql.Rows) ([]models.Answer, error) {
	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.Text, &a.Language); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// InsertNLURequest writes the audit record of one inference call.
func (c *Client) InsertNLURequest(record *models.NLURequest) error {
	query := `
		INSERT INTO nlu_requests (id, params, model_output, properties, answer, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.Params,
		record.ModelOutput,
		record.Properties,
		record.Answer,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert nlu request: %w", err)
	}

	logger.Info("NLU request recorded",
		zap.String("request_id", record.ID),
		zap.Int("latency_ms", record.LatencyMS),
	)

	return nil
}

// The insert helpers below serve the seed tool; the inference path never
// mutates curated data.

func (c *Client) InsertIntent(name string) (int64, error) {
	now := time.Now().Unix()
	_, err := c.db.Exec(
		`INSERT INTO intents (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert intent: %w", err)
	}

	var id int64
	if err := c.db.QueryRow(`SELECT id FROM intents WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get intent id: %w", err)
	}
	return id, nil
}

func (c *Client) InsertEntity(name string, parentID *int64) (int64, error) {
	now := time.Now().Unix()
	_, err := c.db.Exec(
		`INSERT INTO entities (name, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET parent_id = excluded.parent_id, updated_at = excluded.updated_at`,
		name, parentID, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entity: %w", err)
	}

	var id int64
	if err := c.db.QueryRow(`SELECT id FROM entities WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get entity id: %w", err)
	}
	return id, nil
}

func (c *Client) InsertTrigger(text, language string, intentID int64) (int64, error) {
	now := time.Now().Unix()
	_, err := c.db.Exec(
		`INSERT INTO triggers (text, language, intent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(text, language) DO UPDATE SET intent_id = excluded.intent_id, updated_at = excluded.updated_at`,
		text, language, intentID, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trigger: %w", err)
	}

	var id int64
	err = c.db.QueryRow(`SELECT id FROM triggers WHERE text = ? AND language = ?`, text, language).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get trigger id: %w", err)
	}
	return id, nil
}

func (c *Client) InsertTriggerEntity(triggerID, entityID int64, start, end int, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO trigger_entities (trigger_id, entity_id, start_pos, end_pos, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		triggerID, entityID, start, end, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trigger entity: %w", err)
	}
	return nil
}

func (c *Client) InsertAttribute(key string, value *string) (int64, error) {
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO attributes (key, value, created_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attribute: %w", err)
	}

	var id int64
	if value == nil {
		err = c.db.QueryRow(`SELECT id FROM attributes WHERE key = ? AND value IS NULL`, key).Scan(&id)
	} else {
		err = c.db.QueryRow(`SELECT id FROM attributes WHERE key = ? AND value = ?`, key, *value).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get attribute id: %w", err)
	}
	return id, nil
}

func (c *Client) InsertAnswer(text, language string) (int64, error) {
	now := time.Now().Unix()
	_, err := c.db.Exec(
		`INSERT INTO answers (text, language, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(text, language) DO UPDATE SET updated_at = excluded.updated_at`,
		text, language, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert answer: %w", err)
	}

	var id int64
	err = c.db.QueryRow(`SELECT id FROM answers WHERE text = ? AND language = ?`, text, language).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get answer id: %w", err)
	}
	return id, nil
}

func (c *Client) LinkIntentAnswer(intentID, answerID int64) error {
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO intent_answers (intent_id, answer_id) VALUES (?, ?)`,
		intentID, answerID,
	)
	if err != nil {
		return fmt.Errorf("failed to link intent and answer: %w", err)
	}
	return nil
}

func (c *Client) LinkAnswerAttribute(answerID, attributeID int64) error {
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO answer_attributes (answer_id, attribute_id) VALUES (?, ?)`,
		answerID, attributeID,
	)
	if err != nil {
		return fmt.Errorf("failed to link answer and attribute: %w", err)
	}
	return nil
}
