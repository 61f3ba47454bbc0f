package quizbank

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrBankNotFound is returned when no stored bank has the requested ID
	ErrBankNotFound = errors.New("quiz bank not found")
	// ErrAttemptNotFound is returned when no stored attempt has the requested ID
	ErrAttemptNotFound = errors.New("attempt not found")
)

// DB represents a quiz bank database connection
type DB struct {
	db *sql.DB
}

// DBBank is the stored metadata of an imported bank
type DBBank struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Source       string    `json:"source"` // uploaded document file name
	CreatedAt    time.Time `json:"created_at"`
	NumSections  int       `json:"num_sections"`
	NumQuestions int       `json:"num_questions"`
}

// DBAttempt is a graded submission of one section
type DBAttempt struct {
	ID        string    `json:"id"`
	BankID    string    `json:"bank_id"`
	Section   string    `json:"section"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS banks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			bank_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			selectable INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (bank_id, position),
			FOREIGN KEY (bank_id) REFERENCES banks(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			bank_id TEXT NOT NULL,
			section_pos INTEGER NOT NULL,
			question_num INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			options TEXT NOT NULL,
			FOREIGN KEY (bank_id) REFERENCES banks(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			bank_id TEXT NOT NULL,
			section TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			result TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (bank_id) REFERENCES banks(id) ON DELETE CASCADE
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// SaveBank stores a parsed bank and returns its new ID
func (db *DB) SaveBank(name, source string, bank *QuizBank) (string, error) {
	id := uuid.NewString()

	tx, err := db.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO banks (id, name, source, created_at) VALUES (?, ?, ?, ?)",
		id, name, source, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("failed to create bank: %w", err)
	}

	for pos, section := range bank.Sections() {
		if _, err := tx.Exec(
			"INSERT INTO sections (bank_id, position, name, selectable) VALUES (?, ?, ?, ?)",
			id, pos, section.Name, bank.IsSelectable(section.Name),
		); err != nil {
			return "", fmt.Errorf("failed to create section %q: %w", section.Name, err)
		}

		for num, question := range section.Questions {
			optionsJSON, err := OptionsToJSON(question.Options)
			if err != nil {
				return "", err
			}
			if _, err := tx.Exec(
				"INSERT INTO questions (id, bank_id, section_pos, question_num, prompt, options) VALUES (?, ?, ?, ?, ?, ?)",
				uuid.NewString(), id, pos, num, question.Prompt, optionsJSON,
			); err != nil {
				return "", fmt.Errorf("failed to create question: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit bank: %w", err)
	}
	VerboseLog("Stored bank %s (%s): %d sections, %d questions", id, name, bank.Len(), bank.QuestionCount())
	return id, nil
}

// GetBankInfo retrieves the stored metadata of a bank
func (db *DB) GetBankInfo(id string) (*DBBank, error) {
	var bank DBBank
	err := db.db.QueryRow(
		`SELECT b.id, b.name, b.source, b.created_at,
			(SELECT COUNT(*) FROM sections s WHERE s.bank_id = b.id),
			(SELECT COUNT(*) FROM questions q WHERE q.bank_id = b.id)
		FROM banks b WHERE b.id = ?`,
		id,
	).Scan(&bank.ID, &bank.Name, &bank.Source, &bank.CreatedAt, &bank.NumSections, &bank.NumQuestions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrBankNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return &bank, nil
}

// ListBanks retrieves all stored banks, newest first
func (db *DB) ListBanks() ([]DBBank, error) {
	rows, err := db.db.Query(
		`SELECT b.id, b.name, b.source, b.created_at,
			(SELECT COUNT(*) FROM sections s WHERE s.bank_id = b.id),
			(SELECT COUNT(*) FROM questions q WHERE q.bank_id = b.id)
		FROM banks b ORDER BY b.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get banks: %w", err)
	}
	defer rows.Close()

	var banks []DBBank
	for rows.Next() {
		var bank DBBank
		if err := rows.Scan(&bank.ID, &bank.Name, &bank.Source, &bank.CreatedAt, &bank.NumSections, &bank.NumQuestions); err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}
		banks = append(banks, bank)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banks: %w", err)
	}
	return banks, nil
}

// GetBank loads a stored bank with its sections and questions in document order
func (db *DB) GetBank(id string) (*QuizBank, error) {
	if _, err := db.GetBankInfo(id); err != nil {
		return nil, err
	}

	rows, err := db.db.Query(
		"SELECT position, name, selectable FROM sections WHERE bank_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	defer rows.Close()

	bank := NewQuizBank()
	names := make(map[int]string)
	for rows.Next() {
		var (
			pos        int
			name       string
			selectable bool
		)
		if err := rows.Scan(&pos, &name, &selectable); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		bank.ensureSection(name)
		names[pos] = name
		if selectable {
			bank.selectable = append(bank.selectable, name)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	qrows, err := db.db.Query(
		"SELECT section_pos, prompt, options FROM questions WHERE bank_id = ? ORDER BY section_pos, question_num",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer qrows.Close()

	for qrows.Next() {
		var (
			pos         int
			prompt      string
			optionsJSON string
		)
		if err := qrows.Scan(&pos, &prompt, &optionsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		options, err := JSONToOptions(optionsJSON)
		if err != nil {
			return nil, err
		}
		name, ok := names[pos]
		if !ok {
			return nil, fmt.Errorf("question references missing section %d of bank %s", pos, id)
		}
		section := bank.sections[name]
		section.Questions = append(section.Questions, Question{Prompt: prompt, Options: options})
	}
	if err = qrows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return bank, nil
}

// DeleteBank removes a bank together with its sections, questions and attempts
func (db *DB) DeleteBank(id string) error {
	res, err := db.db.Exec("DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrBankNotFound, id)
	}
	return nil
}

// SaveAttempt stores a graded section and returns the attempt ID
func (db *DB) SaveAttempt(bankID string, result Result) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.NewString()
	_, err = db.db.Exec(
		"INSERT INTO attempts (id, bank_id, section, score, total, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, bankID, result.Section, result.Score, result.Total, string(data), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create attempt: %w", err)
	}
	return id, nil
}

// GetAttempt retrieves a stored attempt by ID
func (db *DB) GetAttempt(id string) (*DBAttempt, error) {
	var (
		attempt DBAttempt
		data    string
	)
	err := db.db.QueryRow(
		"SELECT id, bank_id, section, score, total, result, created_at FROM attempts WHERE id = ?",
		id,
	).Scan(&attempt.ID, &attempt.BankID, &attempt.Section, &attempt.Score, &attempt.Total, &data, &attempt.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &attempt.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &attempt, nil
}

// ListAttempts retrieves the attempts of a bank, newest first
func (db *DB) ListAttempts(bankID string) ([]DBAttempt, error) {
	rows, err := db.db.Query(
		"SELECT id, bank_id, section, score, total, result, created_at FROM attempts WHERE bank_id = ? ORDER BY created_at DESC",
		bankID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}
	defer rows.Close()

	var attempts []DBAttempt
	for rows.Next() {
		var (
			attempt DBAttempt
			data    string
		)
		if err := rows.Scan(&attempt.ID, &attempt.BankID, &attempt.Section, &attempt.Score, &attempt.Total, &data, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &attempt.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}

// OptionsToJSON converts options to the JSON stored with a question
func OptionsToJSON(options []Option) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions converts stored JSON back to options
func JSONToOptions(optionsJSON string) ([]Option, error) {
	var options []Option
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}
