package replication

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"transcript-fetcher/pkg/db"
	"transcript-fetcher/pkg/domain"
)

// Config wires the replication dependencies.
type Config struct {
	Mongo    *db.Client
	Postgres db.DBProvider
}

// Replicator replicates acquired transcripts from MongoDB to Postgres.
//
// This is intentionally a one-shot, "copy everything" flow for now.
type Replicator struct {
	mongo *db.Client
	pg    db.DBProvider
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	return &Replicator{
		mongo: cfg.Mongo,
		pg:    cfg.Postgres,
	}, nil
}

// ReplicateTranscriptsMongoToPostgres reads all ready transcript records from
// Mongo and inserts them into the Postgres `transcript` table.
//
// Behavior: if a content ID already exists in Postgres, we skip inserting it.
// Processes records in batches to avoid loading all IDs into memory at once.
func (r *Replicator) ReplicateTranscriptsMongoToPostgres(ctx context.Context) error {
	if err := r.ensureTranscriptSchema(ctx); err != nil {
		return err
	}

	records, err := r.mongo.GetReadyRecords(ctx)
	if err != nil {
		return err
	}

	log.Printf("Loaded %d transcript records from Mongo, processing in batches...", len(records))

	totalProcessed, totalInserted, err := r.processBatches(ctx, records)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d records, inserted %d new transcripts", totalProcessed, totalInserted)
	return nil
}

// processBatches processes all records in batches in parallel and returns total processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context, records []domain.TranscriptRecord) (int, int, error) {
	const processBatchSize = 100
	const numWorkers = 5

	type batchJob struct {
		batch []domain.TranscriptRecord
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(records) + processBatchSize - 1) / processBatchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	// Create batches and send to jobs channel
	for start := 0; start < len(records); start += processBatchSize {
		end := r.calculateBatchEnd(start, processBatchSize, len(records))
		batch := records[start:end]
		jobs <- batchJob{batch: batch, start: start, end: end}
	}
	close(jobs)

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	// Close results channel when all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and fail fast on error
	var mu sync.Mutex
	totalProcessed := 0
	totalInserted := 0

	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}

		mu.Lock()
		totalProcessed += result.processed
		totalInserted += result.inserted
		shouldLog := totalProcessed%1000 == 0 || totalProcessed == len(records)
		mu.Unlock()

		if shouldLog {
			r.logProgress(totalProcessed, len(records), totalInserted, totalProcessed == len(records))
		}
	}

	// Final progress log
	r.logProgress(totalProcessed, len(records), totalInserted, true)

	return totalProcessed, totalInserted, nil
}

// calculateBatchEnd calculates the end index for a batch, ensuring it doesn't exceed the total length.
func (r *Replicator) calculateBatchEnd(start, batchSize, totalLen int) int {
	end := start + batchSize
	if end > totalLen {
		return totalLen
	}
	return end
}

// processBatch processes a single batch: checks existing content IDs, filters new records, and inserts them.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.TranscriptRecord, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d records)...", start, end, len(batch))

	existing, err := r.checkContentIDsExistInPostgres(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing content IDs for batch [%d:%d]: %w", start, end, err)
	}
	log.Printf("  Found %d existing content IDs in Postgres", len(existing))

	toInsert := r.filterNewRecords(batch, existing)
	if len(toInsert) == 0 {
		log.Printf("  No new transcripts to insert")
		return 0, nil
	}

	log.Printf("  Inserting %d new transcripts...", len(toInsert))
	if err := r.insertRecordsTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}

	return len(toInsert), nil
}

// logProgress logs progress at regular intervals or at completion.
func (r *Replicator) logProgress(processed, total, inserted int, isComplete bool) {
	if processed%1000 == 0 || isComplete {
		log.Printf("Progress: processed %d/%d records, inserted %d new transcripts", processed, total, inserted)
	}
}

func (r *Replicator) ensureTranscriptSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// Keep schema simple: content_id is the primary key, which also gives us
	// uniqueness. Segments and the attempt log stay in Mongo; Postgres only
	// carries the searchable text plus provenance.
	const ddl = `
CREATE TABLE IF NOT EXISTS transcript (
  content_id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  page_url TEXT NOT NULL DEFAULT '',
  full_text TEXT NOT NULL DEFAULT '',
  language TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  word_count INTEGER NOT NULL DEFAULT 0,
  confidence TEXT NOT NULL DEFAULT '',
  acquired_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create transcript table: %w", err)
	}
	return nil
}

// checkContentIDsExistInPostgres checks which content IDs from the given batch already exist in Postgres.
// This avoids loading all IDs into memory at once.
func (r *Replicator) checkContentIDsExistInPostgres(ctx context.Context, batch []domain.TranscriptRecord) (map[string]bool, error) {
	if r.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	ids := r.extractContentIDs(batch)
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args := r.buildContentIDInQuery(ids)
	return r.executeContentIDQuery(ctx, query, args)
}

// extractContentIDs extracts non-empty content IDs from a batch of records.
func (r *Replicator) extractContentIDs(batch []domain.TranscriptRecord) []interface{} {
	ids := make([]interface{}, 0, len(batch))
	for _, rec := range batch {
		if rec.ContentID != "" {
			ids = append(ids, rec.ContentID)
		}
	}
	return ids
}

// buildContentIDInQuery builds a SQL query with IN clause and returns the query string and arguments.
// Uses a unique identifier to prevent prepared statement cache conflicts in parallel execution.
func (r *Replicator) buildContentIDInQuery(ids []interface{}) (string, []interface{}) {
	// Each batch gets a unique query based on the number of IDs and a hash of
	// the first ID. This prevents pgx from trying to cache the same prepared
	// statement across goroutines.
	var hashSuffix string
	if len(ids) > 0 {
		if idStr, ok := ids[0].(string); ok {
			hash := md5.Sum([]byte(idStr))
			hashSuffix = fmt.Sprintf("%x", hash[:4])
		}
	}
	query := fmt.Sprintf(`/* q_%d_%s */ SELECT content_id FROM transcript WHERE content_id IN (`, len(ids), hashSuffix)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query += ")"
	return query, args
}

// executeContentIDQuery executes a content ID query and returns the results as a set.
func (r *Replicator) executeContentIDQuery(ctx context.Context, query string, args []interface{}) (map[string]bool, error) {
	rows, err := r.pg.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing content IDs: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan content ID: %w", err)
		}
		if id != "" {
			set[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

func (r *Replicator) filterNewRecords(all []domain.TranscriptRecord, existing map[string]bool) []domain.TranscriptRecord {
	if existing == nil {
		existing = map[string]bool{}
	}

	out := make([]domain.TranscriptRecord, 0, len(all))
	for _, rec := range all {
		if rec.ContentID == "" || rec.Transcript == nil {
			continue
		}
		if existing[rec.ContentID] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// insertRecordsTx inserts a batch of records within a transaction.
func (r *Replicator) insertRecordsTx(ctx context.Context, batch []domain.TranscriptRecord) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.executeBatchInsert(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// executeBatchInsert executes the insert statements for a batch of records.
func (r *Replicator) executeBatchInsert(ctx context.Context, tx *sql.Tx, batch []domain.TranscriptRecord) error {
	const insertQuery = `
INSERT INTO transcript (content_id, title, page_url, full_text, language, source, word_count, confidence, acquired_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (content_id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		if rec.ContentID == "" || rec.Transcript == nil {
			continue
		}
		t := rec.Transcript
		if _, err := stmt.ExecContext(ctx,
			rec.ContentID, rec.Title, rec.PageURL,
			t.FullText, t.Language, string(t.Source), t.WordCount, t.Confidence,
			rec.AcquiredAt,
		); err != nil {
			return fmt.Errorf("insert transcript content_id=%q: %w", rec.ContentID, err)
		}
	}

	return nil
}
