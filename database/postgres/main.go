package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"introspeechdev/logger"
	"introspeechdev/speech"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type DatabaseConnectProps struct {
	Logger *logger.LogMiddleware
}

type Database struct {
	Queries
	conn   *sql.DB
	logger *logger.LogMiddleware
}

// Configured reports whether the environment names a Postgres host.
func Configured() bool {
	return os.Getenv("POSTGRES_DB_HOST") != ""
}

func Connect(ctx context.Context, args DatabaseConnectProps) (*Database, error) {
	tracer := otel.Tracer("postgres/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	connectRetries := 5
	var conn *sql.DB
	var err error

	logger := args.Logger.Logger(ctx)

	for connectRetries > 0 {
		conn, err = getConnection(ctx)
		if err == nil {
			logger.Info("[Postgres] Database client started")
			break
		}
		connectRetries -= 1
		sleepTime := 5
		logger.Error(
			"[Postgres] Could not connect to Postgres. Retrying after sleeping.",
			zap.Error(err),
			zap.Int("Retries Left", connectRetries),
			zap.Int("Sleep Time", sleepTime))
		if connectRetries == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second * time.Duration(sleepTime)):
		}
	}

	if err != nil {
		logger.Error("[Postgres] Failed to Connect to Postgres")
		span.RecordError(err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	queries := New(conn)
	if err := queries.CreateSchema(ctx); err != nil {
		span.RecordError(err)
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Database{Queries: *queries, conn: conn, logger: args.Logger}, nil
}

func getConnection(ctx context.Context) (*sql.DB, error) {
	tracer := otel.Tracer("postgres/getConnection")
	ctx, span := tracer.Start(ctx, "getConnection")
	defer span.End()

	host := os.Getenv("POSTGRES_DB_HOST")
	port := os.Getenv("POSTGRES_DB_PORT")
	user := os.Getenv("POSTGRES_DB_USER")
	password := os.Getenv("POSTGRES_DB_PASS")
	dbname := os.Getenv("POSTGRES_DB_NAME")

	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("POSTGRES_DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	postgresqlDbInfo := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslMode,
	)

	connector, err := pq.NewConnector(postgresqlDbInfo)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		span.RecordError(err)
		db.Close()
		return nil, err
	}

	return db, nil
}

func (d *Database) Close() error {
	return d.conn.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *Database) CreateSpeechRequest(ctx context.Context, form speech.FormData) (*speech.SpeechRequest, error) {
	tracer := otel.Tracer("postgres/CreateSpeechRequest")
	ctx, span := tracer.Start(ctx, "CreateSpeechRequest")
	defer span.End()

	row, err := d.Queries.AddSpeechRequest(ctx, AddSpeechRequestParams{
		Name:       form.Name,
		Identity:   form.Identity,
		Background: sql.NullString{Valid: form.Background != "", String: form.Background},
		WhatYouDo:  form.WhatYouDo,
		Motivation: form.Motivation,
	})
	if err != nil {
		d.logger.Logger(ctx).Error("[Postgres] Could not add speech request", zap.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("could not add speech request: %w", err)
	}

	return toSpeechRequest(row), nil
}

func (d *Database) UpdateSpeechRequest(ctx context.Context, id int64, update speech.SpeechRequestUpdate) (*speech.SpeechRequest, error) {
	tracer := otel.Tracer("postgres/UpdateSpeechRequest")
	ctx, span := tracer.Start(ctx, "UpdateSpeechRequest")
	defer span.End()

	// Pairing is checked up front so the CHECK constraint is never the one
	// to reject an update.
	existing, err := d.GetSpeechRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := update.Apply(existing); err != nil {
		return nil, err
	}

	params := UpdateSpeechRequestParams{ID: id}
	if update.GeneratedSpeech != nil {
		params.GeneratedSpeech = sql.NullString{Valid: true, String: *update.GeneratedSpeech}
	}
	if update.WordCount != nil {
		params.WordCount = sql.NullInt32{Valid: true, Int32: int32(*update.WordCount)}
	}

	row, err := d.Queries.UpdateSpeechRequest(ctx, params)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, speech.ErrRequestNotFound
	}
	if err != nil {
		d.logger.Logger(ctx).Error("[Postgres] Could not update speech request", zap.Error(err), zap.Int64("id", id))
		span.RecordError(err)
		return nil, fmt.Errorf("could not update speech request: %w", err)
	}

	return toSpeechRequest(row), nil
}

func (d *Database) GetSpeechRequest(ctx context.Context, id int64) (*speech.SpeechRequest, error) {
	tracer := otel.Tracer("postgres/GetSpeechRequest")
	ctx, span := tracer.Start(ctx, "GetSpeechRequest")
	defer span.End()

	row, err := d.Queries.GetSpeechRequest(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, speech.ErrRequestNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not get speech request: %w", err)
	}
	return toSpeechRequest(row), nil
}

func toSpeechRequest(row SpeechRequestRow) *speech.SpeechRequest {
	r := &speech.SpeechRequest{
		ID: row.ID,
		FormData: speech.FormData{
			Name:       row.Name,
			Identity:   row.Identity,
			Background: row.Background.String,
			WhatYouDo:  row.WhatYouDo,
			Motivation: row.Motivation,
		},
	}
	if row.GeneratedSpeech.Valid {
		s := row.GeneratedSpeech.String
		r.GeneratedSpeech = &s
	}
	if row.WordCount.Valid {
		n := int(row.WordCount.Int32)
		r.WordCount = &n
	}
	return r
}
