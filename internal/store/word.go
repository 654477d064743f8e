package store

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
)

// MaxEditDistance bounds how far a correction may be from the input.
const MaxEditDistance = 2

// ErrInvalidWord is returned for words with characters outside a-z.
var ErrInvalidWord = errors.New("invalid word")

// Word is a dictionary entry.
type Word struct {
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
}

// WordRepository is the spell-check dictionary. It satisfies
// suggest.Dictionary.
type WordRepository struct {
	db *sql.DB
}

// Words returns the word repository for this store.
func (s *Store) Words() *WordRepository {
	return &WordRepository{db: s.db}
}

// Add inserts a word or updates its frequency.
func (r *WordRepository) Add(word string, frequency int) error {
	normalized := normalizeWord(word)
	if normalized == "" {
		return fmt.Errorf("%w: %q", ErrInvalidWord, word)
	}

	_, err := r.db.Exec(
		`INSERT INTO words (word, frequency) VALUES (?, ?)
		 ON CONFLICT(word) DO UPDATE SET frequency = excluded.frequency`,
		normalized, frequency,
	)
	return err
}

// Import loads a word list with one "word [frequency]" entry per line.
// Blank lines and lines starting with # are skipped. It returns the number
// of words stored.
func (r *WordRepository) Import(src io.Reader) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO words (word, frequency) VALUES (?, ?)
		 ON CONFLICT(word) DO UPDATE SET frequency = excluded.frequency`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(src)
	count, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		word := normalizeWord(fields[0])
		if word == "" {
			continue
		}

		frequency := 0
		if len(fields) > 1 {
			frequency, err = strconv.Atoi(fields[1])
			if err != nil {
				return 0, fmt.Errorf("line %d: bad frequency %q", lineNo, fields[1])
			}
		}

		if _, err := stmt.Exec(word, frequency); err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// Check reports whether word is in the dictionary.
func (r *WordRepository) Check(word string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM words WHERE word = ?`, strings.ToLower(word)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Suggest returns up to limit corrections for word: dictionary words within
// MaxEditDistance ranked by distance then frequency, followed by fuzzy
// completions sharing the first letter.
func (r *WordRepository) Suggest(word string, limit int) ([]string, error) {
	word = strings.ToLower(word)
	if word == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.Query(
		`SELECT word, frequency FROM words
		 WHERE length(word) BETWEEN ? AND ? OR substr(word, 1, 1) = ?`,
		len(word)-MaxEditDistance, len(word)+MaxEditDistance, word[:1],
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type candidate struct {
		Word
		distance int
	}

	var near []candidate
	var sameInitial []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.Word, &w.Frequency); err != nil {
			return nil, err
		}
		if w.Word == word {
			continue
		}
		if d := levenshtein.ComputeDistance(word, w.Word); d <= MaxEditDistance {
			near = append(near, candidate{Word: w, distance: d})
		} else if w.Word[0] == word[0] {
			sameInitial = append(sameInitial, w)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(near, func(i, j int) bool {
		a, b := near[i], near[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Word.Word < b.Word.Word
	})

	out := make([]string, 0, limit)
	for _, c := range near {
		if len(out) == limit {
			return out, nil
		}
		out = append(out, c.Word.Word)
	}

	return append(out, completions(word, sameInitial, limit-len(out))...), nil
}

// Count returns the number of dictionary words.
func (r *WordRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// completions ranks words containing the letters of prefix in order.
func completions(prefix string, words []Word, limit int) []string {
	if limit <= 0 || len(words) == 0 {
		return nil
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Frequency != words[j].Frequency {
			return words[i].Frequency > words[j].Frequency
		}
		return words[i].Word < words[j].Word
	})

	data := make([]string, len(words))
	for i, w := range words {
		data[i] = w.Word
	}

	var out []string
	for _, m := range fuzzy.Find(prefix, data) {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// normalizeWord lower-cases word and rejects anything that is not a-z.
func normalizeWord(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ""
	}
	for _, c := range word {
		if c < 'a' || c > 'z' {
			return ""
		}
	}
	return word
}
