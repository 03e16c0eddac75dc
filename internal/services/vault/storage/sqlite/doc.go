// Package sqlite provides SQLite-backed vault persistence.
//
// Relations between vault tables are not enforced with foreign keys. Rows that
// point at soft or hard deleted users, groups and resources are found and
// removed by the per-table cleanup operations exposed through Table.
package sqlite
