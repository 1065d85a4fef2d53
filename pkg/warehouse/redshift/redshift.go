// Copyright 2026 DealerLens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package redshift implements warehouse.Warehouse for Amazon Redshift.
//
// Redshift speaks the Postgres wire protocol, so the backend rides on
// database/sql with lib/pq. Authentication is either a static password or
// temporary IAM credentials minted via the Redshift GetClusterCredentials API.
package redshift

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	redshiftapi "github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

// maxResultRows is the safety limit for query results to prevent OOM.
const maxResultRows = 500

// iamCredentialDuration is the lifetime requested for temporary IAM credentials.
const iamCredentialDuration = 3600 // seconds

// identifierPattern validates table names used in introspection queries.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Compile-time interface check.
var _ warehouse.Warehouse = (*Backend)(nil)

// Config holds connection configuration for the Redshift backend.
type Config struct {
	Host     string
	Port     int
	Database string
	// Schema is the search schema for introspection (default "public").
	Schema   string
	User     string
	Password string

	// UseIAM mints temporary credentials via GetClusterCredentials instead of
	// using Password. Requires ClusterIdentifier and Region.
	UseIAM            bool
	ClusterIdentifier string
	Region            string

	// SampleRows per table in Describe output (default warehouse.DefaultSampleRows).
	SampleRows int

	Logger *zap.Logger
}

// Backend implements warehouse.Warehouse for Amazon Redshift.
type Backend struct {
	db         *sql.DB
	schema     string
	sampleRows int
	logger     *zap.Logger
}

// Open connects to Redshift, minting IAM credentials first when configured.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("Host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("Database is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 5439
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	user, password := cfg.User, cfg.Password
	if cfg.UseIAM {
		var err error
		user, password, err = clusterCredentials(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to get IAM credentials: %w", err)
		}
		cfg.Logger.Info("obtained temporary IAM credentials for redshift",
			zap.String("cluster", cfg.ClusterIdentifier),
			zap.String("db_user", user))
	}
	if password == "" {
		return nil, fmt.Errorf("Password is required when UseIAM is false")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=require&application_name=dealerlens",
		url.QueryEscape(user),
		url.QueryEscape(password),
		cfg.Host,
		cfg.Port,
		cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		// Don't wrap the original error as it may contain the DSN with credentials.
		return nil, fmt.Errorf("failed to open connection to redshift cluster %s", cfg.Host)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redshift database %s: %w", cfg.Database, err)
	}

	cfg.Logger.Info("redshift backend connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.Bool("iam", cfg.UseIAM))

	return NewWithDB(db, cfg), nil
}

// NewWithDB wraps an existing connection. Used by Open and by tests that
// inject a mocked *sql.DB.
func NewWithDB(db *sql.DB, cfg Config) *Backend {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.SampleRows == 0 {
		cfg.SampleRows = warehouse.DefaultSampleRows
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Backend{
		db:         db,
		schema:     cfg.Schema,
		sampleRows: cfg.SampleRows,
		logger:     cfg.Logger,
	}
}

// clusterCredentials mints temporary database credentials for the cluster.
func clusterCredentials(ctx context.Context, cfg Config) (user, password string, err error) {
	if cfg.ClusterIdentifier == "" {
		return "", "", fmt.Errorf("ClusterIdentifier is required when UseIAM is true")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return "", "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := redshiftapi.NewFromConfig(awsCfg)
	out, err := client.GetClusterCredentials(ctx, &redshiftapi.GetClusterCredentialsInput{
		DbUser:            aws.String(cfg.User),
		DbName:            aws.String(cfg.Database),
		ClusterIdentifier: aws.String(cfg.ClusterIdentifier),
		DurationSeconds:   aws.Int32(iamCredentialDuration),
		AutoCreate:        aws.Bool(false),
	})
	if err != nil {
		return "", "", err
	}
	return aws.ToString(out.DbUser), aws.ToString(out.DbPassword), nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return "redshift"
}

// Dialect describes Redshift SQL for the planning briefing.
func (b *Backend) Dialect() warehouse.Dialect {
	return warehouse.Dialect{
		Name: "Amazon Redshift SQL",
		Notes: []string{
			"For year extraction: EXTRACT(YEAR FROM date_column) NOT strftime",
			"For month extraction: EXTRACT(MONTH FROM date_column)",
			"For date filtering: WHERE date_column >= '2024-01-01'",
			"Limit results with LIMIT n at the end of the query",
			"Use standard SQL syntax, NOT SQLite functions",
		},
	}
}

// ListTables returns the base tables in the configured schema.
func (b *Backend) ListTables(ctx context.Context) ([]string, error) {
	const q = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	rows, err := b.db.QueryContext(ctx, q, b.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tables, nil
}

// Describe returns CREATE-TABLE-style schema text plus sample rows for the
// given tables (all tables when the list is empty).
func (b *Backend) Describe(ctx context.Context, tables []string) (string, error) {
	if len(tables) == 0 {
		all, err := b.ListTables(ctx)
		if err != nil {
			return "", err
		}
		tables = all
	} else {
		tables = append([]string(nil), tables...)
		sort.Strings(tables)
	}

	var sb strings.Builder
	for i, table := range tables {
		if !identifierPattern.MatchString(table) {
			return "", fmt.Errorf("invalid table name %q", table)
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if err := b.describeTable(ctx, &sb, table); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (b *Backend) describeTable(ctx context.Context, sb *strings.Builder, table string) error {
	const q = `SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`
	rows, err := b.db.QueryContext(ctx, q, b.schema, table)
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	fmt.Fprintf(sb, "CREATE TABLE %s (\n", table)
	first := true
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		if !first {
			sb.WriteString(",\n")
		}
		first = false
		fmt.Fprintf(sb, "\t%s %s", name, strings.ToUpper(dataType))
		if nullable == "NO" {
			sb.WriteString(" NOT NULL")
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	sb.WriteString("\n)\n")

	sample, err := b.sampleTable(ctx, table)
	if err != nil {
		// Sample rows are best effort; the schema is still useful on its own.
		b.logger.Warn("failed to sample table", zap.String("table", table), zap.Error(err))
		return nil
	}
	fmt.Fprintf(sb, "\n%d rows from %s table:\n%s", b.sampleRows, table, sample)
	return nil
}

func (b *Backend) sampleTable(ctx context.Context, table string) (string, error) {
	q := fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d",
		pq.QuoteIdentifier(b.schema), pq.QuoteIdentifier(table), b.sampleRows)
	return b.queryText(ctx, q)
}

// Execute runs a literal SQL statement and renders the result.
func (b *Backend) Execute(ctx context.Context, sqlText string) (string, error) {
	start := time.Now()
	out, err := b.queryText(ctx, sqlText)
	if err != nil {
		return "", err
	}
	b.logger.Debug("executed query",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(out)))
	return out, nil
}

func (b *Backend) queryText(ctx context.Context, sqlText string) (string, error) {
	rows, err := b.db.QueryContext(ctx, sqlText)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("failed to read columns: %w", err)
	}

	var rendered [][]string
	truncated := false
	for rows.Next() {
		if len(rendered) >= maxResultRows {
			truncated = true
			break
		}
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]string, len(columns))
		for i, v := range values {
			cells[i] = warehouse.FormatValue(v)
		}
		rendered = append(rendered, cells)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("row iteration error: %w", err)
	}

	out := warehouse.RenderRows(columns, rendered, warehouse.DefaultMaxCellChars)
	if truncated {
		out += fmt.Sprintf("\n(result truncated at %d rows)", maxResultRows)
	}
	return out, nil
}

// Ping checks connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}
