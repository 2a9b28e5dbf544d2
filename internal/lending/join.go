package lending

import (
	"iter"

	"libraryadmin/internal/book"
	"libraryadmin/internal/student"
)

// Placeholders used when a transaction references a record that no longer resolves.
const (
	UnknownStudent = "Unknown Student"
	UnknownBook    = "Unknown Book"
	UnknownAuthor  = "Unknown Author"
)

// Join hash-joins transactions with students and books by id, keeping the
// order of txs.
func Join(
	txs iter.Seq2[Transaction, error],
	students iter.Seq2[student.Student, error],
	books iter.Seq2[book.Book, error],
) ([]View, error) {
	studentsByID := make(map[string]student.Student)
	for s, err := range students {
		if err != nil {
			return nil, err
		}
		studentsByID[s.ID] = s
	}

	booksByID := make(map[string]book.Book)
	for b, err := range books {
		if err != nil {
			return nil, err
		}
		booksByID[b.ID] = b
	}

	views := []View{}
	for tx, err := range txs {
		if err != nil {
			return nil, err
		}
		v := View{
			Transaction: tx,
			StudentName: UnknownStudent,
			BookTitle:   UnknownBook,
			BookAuthor:  UnknownAuthor,
		}
		if s, ok := studentsByID[tx.StudentID]; ok {
			v.StudentName = s.Name
			v.StudentEmail = s.Email
		}
		if b, ok := booksByID[tx.BookID]; ok {
			v.BookTitle = b.Title
			v.BookAuthor = b.Author
		}
		views = append(views, v)
	}
	return views, nil
}
