// Package store provides SQLite-backed storage for imported IOF result lists.
//
// Every table has a surrogate INTEGER id and a UNIQUE natural key:
//   - organisations:        name
//   - events:               name
//   - result_lists:         (event, creator, create_time)
//   - event_classes:        (event, class name)
//   - courses:              (class, race number)
//   - class_results:        (result list, class)
//   - persons:              (family, given, birth date)
//   - person_results:       (class result, person)
//   - person_race_results:  (person result, race number)
//   - split_times:          (race result, sequence)
//
// Name components of natural keys are stored normalised (see iof.NormalizeKey)
// in *_key columns, next to the display text.
//
// # Find-or-create
//
// Writers insert with ON CONFLICT(<natural key>) DO NOTHING. When no row was
// affected the existing id is selected by the same key. Existing rows are
// returned untouched. Race results and split times are the exception: their
// values change while an event runs, so they are upserted.
//
// All writes of one document go through a single Tx (see Store.WithTx), so a
// failed import leaves nothing behind.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
