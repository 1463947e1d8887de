/*
Package catalog loads the two task tables and merges them into the ordered
trial list played by a session.

The definitions table holds `id,description` rows and the order table holds
`order,task_id` rows, each preceded by a header row. Malformed rows are
skipped rather than failing the whole parse. The merge is a lossy join: order
entries referencing an unknown task id are dropped.
*/
package catalog
