package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Store persists audit events to the messages table
type Store struct {
	db       *sql.DB
	hostname string
	procid   string
}

// Message is one persisted audit record
type Message struct {
	Facility  int            `json:"facility"`
	Severity  int            `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Hostname  string         `json:"hostname"`
	Appname   string         `json:"appname"`
	Procid    string         `json:"procid"`
	Msgid     string         `json:"msgid"`
	Sdata     map[string]any `json:"sdata"`
	Message   string         `json:"message"`
}

// String renders the record as one human readable line
func (m Message) String() string {
	return fmt.Sprintf("%s %-9s %s", m.Timestamp.Format(time.RFC3339), m.Msgid, m.Message)
}

// NewStore opens the store at AUDIT_DATABASE_URL. It returns nil, nil when
// the variable is unset, which disables persistence.
func NewStore() (*Store, error) {
	dbURL := os.Getenv("AUDIT_DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}
	return Open(dbURL)
}

// Open opens a store on the given postgres URL
func Open(dbURL string) (*Store, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB creates a store with an existing database connection
func NewStoreWithDB(db *sql.DB) *Store {
	hostname, _ := os.Hostname()
	return &Store{
		db:       db,
		hostname: hostname,
		procid:   strconv.Itoa(os.Getpid()),
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists an audit event
func (s *Store) Save(event Event) error {
	if s.db == nil {
		return nil
	}

	sdata, err := json.Marshal(event.StructuredData())
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO messages (facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		event.Facility(),
		int(event.Severity()),
		time.Now().UTC(),
		s.hostname,
		AppName,
		s.procid,
		event.MessageID(),
		sdata,
		event.Message(),
	)
	return err
}

// Recent returns up to limit records, newest first. A non-empty msgID
// restricts the result to that kind of event ("like", "meme-send", ...).
func (s *Store) Recent(msgID string, limit int) ([]Message, error) {
	if s.db == nil {
		return nil, nil
	}

	var (
		where []string
		args  []any
	)
	if msgID != "" {
		args = append(args, msgID)
		where = append(where, "msgid = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message FROM messages`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var m Message
		var hostname, appname, procid, msgid sql.NullString
		var sdata []byte
		if err := rows.Scan(&m.Facility, &m.Severity, &m.Timestamp, &hostname, &appname, &procid, &msgid, &sdata, &m.Message); err != nil {
			return nil, err
		}
		m.Hostname, m.Appname, m.Procid, m.Msgid = hostname.String, appname.String, procid.String, msgid.String
		if len(sdata) > 0 {
			if err := json.Unmarshal(sdata, &m.Sdata); err != nil {
				return nil, fmt.Errorf("malformed sdata in audit message: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}
