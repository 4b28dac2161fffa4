// Package memory provides an in-memory directory implementation.
package memory

import "github.com/hashicorp/go-memdb"

const (
	tblRooms   = "rooms"
	tblMembers = "members"
)

const (
	idxRoomID       = "id"
	idxMemberID     = "id"
	idxMemberRoomID = "room_id"
)

// schema is the schema of the memory directory.
var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblRooms: {
			Name: tblRooms,
			Indexes: map[string]*memdb.IndexSchema{
				idxRoomID: {
					Name:    idxRoomID,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
			},
		},
		tblMembers: {
			Name: tblMembers,
			Indexes: map[string]*memdb.IndexSchema{
				idxMemberID: {
					Name:   idxMemberID,
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "RoomID"},
							&memdb.StringFieldIndex{Field: "ID"},
						},
					},
				},
				idxMemberRoomID: {
					Name:    idxMemberRoomID,
					Unique:  false,
					Indexer: &memdb.StringFieldIndex{Field: "RoomID"},
				},
			},
		},
	},
}
