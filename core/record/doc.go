// Package record defines the sale record replicated across every region.
//
// A Record carries its own lifecycle: it is created with a fresh UUID, mutated in
// place by updates or soft deletes, and never physically removed by the
// replication path. UpdatedAt is the only value used to order two versions of the
// same record, so every mutation must stamp it explicitly.
//
// # Tombstones
//
// A soft-deleted record keeps its row. Deleted and DeletedAt travel with the
// record exactly like any other field, which is how a deletion reaches the other
// regions.
//
// # Usage
//
//	rec := record.New("Dakar", date, decimal.NewFromInt(100), "rice", time.Now())
//	rec.MarkDeleted(time.Now())
//	copy := rec.CloneFor("Thies")
package record
