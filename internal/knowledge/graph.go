// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/pdiddy/paper-search/pkg/types"
)

// RelationDiscusses is the relationship_type stamped on paper→concept edges.
const RelationDiscusses = "discusses"

// AddConcept upserts a concept by name. A new concept starts at frequency 1;
// an existing one has its frequency incremented and keeps its record id.
// Empty description and category on the existing row are filled in, so a
// stub created by an edge gets its details on the next observation.
func (s *Store) AddConcept(ctx context.Context, name, description, category string) (string, error) {
	if err := validation.Validate(name, validation.Required); err != nil {
		return "", fmt.Errorf("concept name: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO concept (id, name, description, category, frequency, created_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT(name) DO UPDATE SET
			frequency = frequency + 1,
			description = CASE WHEN description = '' THEN excluded.description ELSE description END,
			category = CASE WHEN category = '' THEN excluded.category ELSE category END`,
		uuid.NewString(), name, description, category,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("upserting concept %s: %w", name, err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM concept WHERE name = ?`, name,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("reading back concept %s: %w", name, err)
	}
	return id, nil
}

// RelatePaperToConcept creates a "discusses" edge from a stored paper to a
// concept. strength must lie in [0, 1]; out-of-range values are rejected.
// A concept that does not exist yet is created as a frequency-0 stub, but
// the paper must already be stored.
func (s *Store) RelatePaperToConcept(ctx context.Context, paperID, conceptName string, strength float64) (string, error) {
	if err := validation.Validate(conceptName, validation.Required); err != nil {
		return "", fmt.Errorf("concept name: %w", err)
	}
	if err := validation.Validate(strength, validation.Min(0.0), validation.Max(1.0)); err != nil {
		return "", fmt.Errorf("strength: %w", err)
	}

	paperRecordID, err := s.paperRecordID(ctx, paperID)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The edge creates its target implicitly: an unknown concept becomes a
	// stub that AddConcept later fleshes out.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO concept (id, name, description, category, frequency, created_at)
		 VALUES (?, ?, '', '', 0, ?)`,
		uuid.NewString(), conceptName, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("creating concept stub %s: %w", conceptName, err)
	}

	var conceptID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM concept WHERE name = ?`, conceptName,
	).Scan(&conceptID); err != nil {
		return "", fmt.Errorf("reading back concept %s: %w", conceptName, err)
	}

	edgeID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO relates_to (id, paper_id, concept_id, relationship_type, strength, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		edgeID, paperRecordID, conceptID, RelationDiscusses, strength,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return "", fmt.Errorf("relating %s to %s: %w", paperID, conceptName, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing relation: %w", err)
	}
	return edgeID, nil
}

// GetRelatedConcepts returns the concepts a paper discusses, strongest
// edges first.
func (s *Store) GetRelatedConcepts(ctx context.Context, paperID string) ([]types.ConceptRelation, error) {
	paperRecordID, err := s.paperRecordID(ctx, paperID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.description, c.category, c.frequency, c.created_at, r.strength
		 FROM relates_to r
		 JOIN concept c ON c.id = r.concept_id
		 WHERE r.paper_id = ?
		 ORDER BY r.strength DESC, c.name`, paperRecordID)
	if err != nil {
		return nil, fmt.Errorf("querying related concepts: %w", err)
	}
	defer rows.Close()

	relations := []types.ConceptRelation{}
	for rows.Next() {
		var rel types.ConceptRelation
		var createdAt string
		if err := rows.Scan(
			&rel.Concept.ID, &rel.Concept.Name, &rel.Concept.Description,
			&rel.Concept.Category, &rel.Concept.Frequency, &createdAt, &rel.Strength,
		); err != nil {
			return nil, fmt.Errorf("scanning concept row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rel.Concept.CreatedAt = t
		}
		relations = append(relations, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating concept rows: %w", err)
	}
	return relations, nil
}

// GetSimilarPapers walks two hops through shared concepts and returns the
// papers reached, most shared concepts first. The origin paper is excluded.
func (s *Store) GetSimilarPapers(ctx context.Context, paperID string, limit int) ([]types.SimilarPaper, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	paperRecordID, err := s.paperRecordID(ctx, paperID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.paper_id, p.title, count(DISTINCT other.concept_id) AS shared
		 FROM relates_to origin
		 JOIN relates_to other ON other.concept_id = origin.concept_id
		 JOIN paper p ON p.id = other.paper_id
		 WHERE origin.paper_id = ? AND other.paper_id != origin.paper_id
		 GROUP BY p.id
		 ORDER BY shared DESC, p.title
		 LIMIT ?`, paperRecordID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying similar papers: %w", err)
	}
	defer rows.Close()

	similar := []types.SimilarPaper{}
	for rows.Next() {
		var sp types.SimilarPaper
		if err := rows.Scan(&sp.ID, &sp.PaperID, &sp.Title, &sp.SharedConcepts); err != nil {
			return nil, fmt.Errorf("scanning similar-paper row: %w", err)
		}
		similar = append(similar, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating similar-paper rows: %w", err)
	}
	return similar, nil
}

// paperRecordID resolves an external paper_id to the internal record id.
func (s *Store) paperRecordID(ctx context.Context, paperID string) (string, error) {
	var id string
	row := s.db.QueryRowContext(ctx, `SELECT id FROM paper WHERE paper_id = ?`, paperID)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("paper %s: %w", paperID, ErrNotFound)
		}
		return "", fmt.Errorf("resolving paper %s: %w", paperID, err)
	}
	return id, nil
}
