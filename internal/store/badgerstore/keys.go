package badgerstore

// Key layout:
//
//	book:<id>                       -> book.Book
//	student:<id>                    -> student.Student
//	txn:<id>                        -> lending.Transaction
//	idx:isbn:<isbn>                 -> book id
//	idx:email:<email>               -> student id
//	idx:txn:book:<bookID>:<txnID>   -> empty
//	idx:txn:student:<stuID>:<txnID> -> empty
const (
	prefixBook       = "book:"
	prefixStudent    = "student:"
	prefixTxn        = "txn:"
	prefixISBN       = "idx:isbn:"
	prefixEmail      = "idx:email:"
	prefixTxnBook    = "idx:txn:book:"
	prefixTxnStudent = "idx:txn:student:"
)

func key(prefix, id string) []byte {
	return []byte(prefix + id)
}

func linkKey(prefix, ownerID, txnID string) []byte {
	return []byte(prefix + ownerID + ":" + txnID)
}

func linkPrefix(prefix, ownerID string) []byte {
	return []byte(prefix + ownerID + ":")
}
