package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"libraryadmin/internal/apperr"
	"libraryadmin/internal/book"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/platform/openlibrary"
	"libraryadmin/internal/student"
)

type seeder struct {
	log      *logger.Logger
	books    *book.Service
	students *student.Service
}

// seedStudents creates each student, skipping ones whose email already exists.
func (s *seeder) seedStudents(ctx context.Context, inputs []student.CreateInput) {
	created, skipped := 0, 0
	for _, in := range inputs {
		if _, err := s.students.Create(ctx, in); err != nil {
			if apperr.CodeOf(err) == apperr.CodeConflict {
				skipped++
				continue
			}
			s.log.Error("Failed to create student", "email", in.Email, "error", err)
			continue
		}
		created++
	}
	s.log.Info("Seeded students", "created", created, "skipped", skipped)
}

// seedBooks creates each book, skipping ones whose ISBN already exists.
func (s *seeder) seedBooks(ctx context.Context, inputs []book.CreateInput) {
	created, skipped := 0, 0
	for _, in := range inputs {
		if _, err := s.books.Create(ctx, in); err != nil {
			if apperr.CodeOf(err) == apperr.CodeConflict {
				skipped++
				continue
			}
			s.log.Error("Failed to create book", "isbn", in.ISBN, "error", err)
			continue
		}
		created++
	}
	s.log.Info("Seeded books", "created", created, "skipped", skipped)
}

var (
	firstNames = []string{"Aarav", "Diya", "Ishaan", "Meera", "Kabir", "Ananya", "Rohan", "Saanvi", "Vihaan", "Priya"}
	lastNames  = []string{"Sharma", "Iyer", "Khan", "Patel", "Reddy", "Das", "Menon", "Singh", "Gupta", "Nair"}
	genders    = []string{student.GenderMale, student.GenderFemale, student.GenderOther}
	categories = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
)

func demoStudents(n int) []student.CreateInput {
	out := make([]student.CreateInput, 0, n)
	for i := range n {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		out = append(out, student.CreateInput{
			Name:        first + " " + last,
			Email:       fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			PhoneNumber: fmt.Sprintf("98%08d", i+1),
			Gender:      genders[i%len(genders)],
		})
	}
	return out
}

func demoBooks(n int) []book.CreateInput {
	out := make([]book.CreateInput, 0, n)
	for i := range n {
		total := 1 + rand.Intn(5)
		out = append(out, book.CreateInput{
			Title:           fmt.Sprintf("Book Title %d - %s", i+1, getRandomWord()),
			Author:          fmt.Sprintf("%s %s", firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))]),
			ISBN:            fmt.Sprintf("978-%08d", i+1),
			Category:        categories[rand.Intn(len(categories))],
			TotalCopies:     &total,
			PublicationYear: 1950 + rand.Intn(75),
		})
	}
	return out
}

// booksFromSearch converts Open Library search hits into create inputs. Hits
// without an ISBN, title or author are dropped, as are repeated ISBNs.
func booksFromSearch(docs []openlibrary.SearchDoc, subject string) []book.CreateInput {
	category := titleCase(subject)
	seen := make(map[string]bool, len(docs))
	out := make([]book.CreateInput, 0, len(docs))
	for _, d := range docs {
		if len(d.ISBN) == 0 || strings.TrimSpace(d.Title) == "" || len(d.AuthorNames) == 0 {
			continue
		}
		isbn := d.ISBN[0]
		if seen[isbn] {
			continue
		}
		seen[isbn] = true

		out = append(out, book.CreateInput{
			Title:           d.Title,
			Author:          strings.Join(d.AuthorNames, ", "),
			ISBN:            isbn,
			Category:        category,
			PublicationYear: d.FirstPublishYear,
		})
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func getRandomWord() string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rand.Intn(len(words))]
}
