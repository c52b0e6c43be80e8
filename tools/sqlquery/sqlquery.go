package sqlquery

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmutils"
	"github.com/saahil/toolcalling/pkg/schema"
	"github.com/saahil/toolcalling/tools"
)

const ToolName = "sql_query"

// QueryRequest represents the tool input.
type QueryRequest struct {
	Query string `json:"query" yaml:"query" jsonschema:"title=query,description=A read-only SQL query to execute against the database."`
}

// QueryResult holds the rendered rows of a query.
type QueryResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Tool executes read-only SQL queries against a configured connection.
// The model generates the queries, so anything that is not a plain read
// is rejected before it reaches the database.
type Tool struct {
	name        string
	description string
	funcParams  any

	db *sql.DB
}

var _ tools.Tool[QueryRequest, QueryResult] = (*Tool)(nil)

func New(db *sql.DB) (*Tool, error) {
	if db == nil {
		return nil, errors.New("sqlquery: nil database handle")
	}
	sc, err := schema.New(reflect.TypeOf(QueryRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Run a read-only SQL query against the configured database and return the rows.",
		db:          db,
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

// readOnlyPrefixes are the only statement kinds the guard lets through.
var readOnlyPrefixes = []string{"select", "with", "explain", "show", "values"}

// writeKeywords are rejected anywhere in the statement, not only at the
// start: EXPLAIN ANALYZE executes the inner statement and WITH admits
// data-modifying CTEs, so a prefix check alone is not enough.
var writeKeywords = []string{
	"insert", "update", "delete", "merge", "truncate", "drop", "create",
	"alter", "grant", "revoke", "copy", "call", "vacuum", "analyze", "lock",
}

func statementWords(q string) []string {
	return strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// ValidateQuery rejects anything that is not a single read-only statement.
func ValidateQuery(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return errors.WithMessage(tools.ErrQueryRejected, "empty query")
	}
	if strings.Contains(q, ";") {
		return errors.WithMessage(tools.ErrQueryRejected, "multiple statements are not allowed")
	}

	words := statementWords(q)
	if len(words) == 0 {
		return errors.WithMessage(tools.ErrQueryRejected, "empty query")
	}
	if !slices.Contains(readOnlyPrefixes, words[0]) {
		return errors.WithMessagef(tools.ErrQueryRejected, "statement %q is not allowed, only read-only queries are permitted", strings.ToUpper(words[0]))
	}
	for _, word := range words[1:] {
		if slices.Contains(writeKeywords, word) {
			return errors.WithMessagef(tools.ErrQueryRejected, "keyword %q is not allowed in a read-only query", strings.ToUpper(word))
		}
	}
	return nil
}

func (t *Tool) Run(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	if err := ValidateQuery(req.Query); err != nil {
		return nil, err
	}

	// the database enforces read-only for anything the keyword scan missed
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, errors.WithMessage(tools.ErrQueryExecution, err.Error())
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, req.Query)
	if err != nil {
		return nil, errors.WithMessage(tools.ErrQueryExecution, err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.WithMessage(tools.ErrQueryExecution, err.Error())
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, errors.WithMessage(tools.ErrQueryExecution, err.Error())
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithMessage(tools.ErrQueryExecution, err.Error())
	}

	return result, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req QueryRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithMessage(chatmodel.ErrFailedUnmarshalInput, err.Error())
	}
	result, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return chatmodel.Stringify(result), nil
}

func (r *QueryResult) String() string {
	if len(r.Rows) == 0 {
		return "(no rows)"
	}
	var buf strings.Builder
	buf.WriteString(strings.Join(r.Columns, " | "))
	for _, row := range r.Rows {
		buf.WriteString("\n")
		buf.WriteString(strings.Join(row, " | "))
	}
	return buf.String()
}
