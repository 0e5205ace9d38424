package postgres

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type SpeechRequestRow struct {
	ID              int64
	Name            string
	Identity        string
	Background      sql.NullString
	WhatYouDo       string
	Motivation      string
	GeneratedSpeech sql.NullString
	WordCount       sql.NullInt32
}

const createSchema = `
CREATE TABLE IF NOT EXISTS speech_requests (
	id               SERIAL PRIMARY KEY,
	name             TEXT NOT NULL,
	identity         TEXT NOT NULL,
	background       TEXT,
	what_you_do      TEXT NOT NULL,
	motivation       TEXT NOT NULL,
	generated_speech TEXT,
	word_count       INTEGER,
	CHECK ((generated_speech IS NULL) = (word_count IS NULL))
)`

func (q *Queries) CreateSchema(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, createSchema)
	return err
}

const addSpeechRequest = `
INSERT INTO speech_requests (name, identity, background, what_you_do, motivation)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, identity, background, what_you_do, motivation, generated_speech, word_count`

type AddSpeechRequestParams struct {
	Name       string
	Identity   string
	Background sql.NullString
	WhatYouDo  string
	Motivation string
}

func (q *Queries) AddSpeechRequest(ctx context.Context, arg AddSpeechRequestParams) (SpeechRequestRow, error) {
	row := q.db.QueryRowContext(ctx, addSpeechRequest,
		arg.Name,
		arg.Identity,
		arg.Background,
		arg.WhatYouDo,
		arg.Motivation,
	)
	return scanSpeechRequest(row)
}

const updateSpeechRequest = `
UPDATE speech_requests
SET generated_speech = COALESCE($2, generated_speech),
    word_count = COALESCE($3, word_count)
WHERE id = $1
RETURNING id, name, identity, background, what_you_do, motivation, generated_speech, word_count`

type UpdateSpeechRequestParams struct {
	ID              int64
	GeneratedSpeech sql.NullString
	WordCount       sql.NullInt32
}

func (q *Queries) UpdateSpeechRequest(ctx context.Context, arg UpdateSpeechRequestParams) (SpeechRequestRow, error) {
	row := q.db.QueryRowContext(ctx, updateSpeechRequest, arg.ID, arg.GeneratedSpeech, arg.WordCount)
	return scanSpeechRequest(row)
}

const getSpeechRequest = `
SELECT id, name, identity, background, what_you_do, motivation, generated_speech, word_count
FROM speech_requests
WHERE id = $1`

func (q *Queries) GetSpeechRequest(ctx context.Context, id int64) (SpeechRequestRow, error) {
	row := q.db.QueryRowContext(ctx, getSpeechRequest, id)
	return scanSpeechRequest(row)
}

func scanSpeechRequest(row *sql.Row) (SpeechRequestRow, error) {
	var i SpeechRequestRow
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Identity,
		&i.Background,
		&i.WhatYouDo,
		&i.Motivation,
		&i.GeneratedSpeech,
		&i.WordCount,
	)
	return i, err
}
