// Package storage saves, validates and loads task stores as JSON documents.
//
// # Document Format
//
//	{
//	  "metadata": {"version": "1.0", "task_count": 2, "saved_at": "2024-01-01T00:00:00Z"},
//	  "storage": {
//	    "tasks": {"1": {...}, "2": {...}},
//	    "next_id": 3,
//	    "total_count": 2
//	  }
//	}
//
// Task keys are decimal ids and must match the id inside each task. Files are
// written with 2-space indentation and a trailing newline, through a temporary
// file that is renamed into place.
//
// # Validation
//
// [ValidateFile] collects every problem it finds instead of stopping at the
// first: missing keys, unsupported version, task_count mismatch, missing task
// fields, field values rejected by the embedded task schema, dangling
// dependencies and dependency cycles. Only unparseable JSON stops it early.
//
// # Loading
//
// [Persister.Load] combines a valid document with the live store in one of
// three modes: [ModeReplace], [ModeMerge] and [ModeMergeRenumber]. Every mode
// is all-or-nothing. [Persister.Restore] resumes a saved session.
package storage
