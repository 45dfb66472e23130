// Package sqlstore keeps record store datasets as SQL tables through gorm.
//
// The calsync_datasets table registers every dataset with its table name and
// field list. Parent locations are plain names; notes appended to them land
// in calsync_notes. Works on MySQL and SQLite.
package sqlstore
