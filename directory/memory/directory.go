// Package memory provides an in-memory directory implementation.
package memory

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
	"meshroom/broker"
	"meshroom/broker/subscription"
	"meshroom/directory"
)

// DB is a memory-backed room directory.
type DB struct {
	db     *memdb.MemDB
	broker *broker.Broker
}

// New creates a new memory-backed directory.
func New(config directory.Config, b *broker.Broker) *DB {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		panic(err)
	}
	newDB := &DB{
		db:     db,
		broker: b,
	}
	if config.SetDefaultRoom {
		capacity := config.DefaultRoomCapacity
		if capacity <= 0 {
			capacity = directory.DefaultRoomCapacity
		}
		if err := newDB.EnsureRoomInfo(directory.DefaultRoomID, capacity); err != nil {
			panic(err)
		}
		log.Printf("default room created: ID:%s, Capacity:%d", directory.DefaultRoomID, capacity)
	}
	return newDB
}

// EnsureRoomInfo creates a new room if it doesn't exist.
func (d *DB) EnsureRoomInfo(roomID string, capacity int) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	existing, err := txn.First(tblRooms, idxRoomID, roomID)
	if err != nil {
		return fmt.Errorf("find room by roomID: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%s: %w", roomID, directory.ErrRoomAlreadyExists)
	}
	info := &directory.RoomInfo{
		ID:        roomID,
		Capacity:  capacity,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := txn.Insert(tblRooms, info); err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	txn.Commit()
	return nil
}

// FindRoomInfoByID finds a room by its ID. Inactive rooms are reported as
// not found, matching what joiners are allowed to see.
func (d *DB) FindRoomInfoByID(id string) (*directory.RoomInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tblRooms, idxRoomID, id)
	if err != nil {
		return nil, fmt.Errorf("find room by roomID: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, directory.ErrRoomNotFound)
	}
	info := raw.(*directory.RoomInfo)
	if !info.IsActive {
		return nil, fmt.Errorf("%s: %w", id, directory.ErrRoomNotFound)
	}
	return info.DeepCopy(), nil
}

// CreateMemberInfo registers a member in the room if capacity allows.
func (d *DB) CreateMemberInfo(roomID, memberID, name string) (*directory.MemberInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	rawRoom, err := txn.First(tblRooms, idxRoomID, roomID)
	if err != nil {
		return nil, fmt.Errorf("find room by roomID: %w", err)
	}
	if rawRoom == nil || !rawRoom.(*directory.RoomInfo).IsActive {
		return nil, fmt.Errorf("%s: %w", roomID, directory.ErrRoomNotFound)
	}
	room := rawRoom.(*directory.RoomInfo)

	existing, err := txn.First(tblMembers, idxMemberID, roomID, memberID)
	if err != nil {
		return nil, fmt.Errorf("find member by memberID: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%s: %w", memberID, directory.ErrMemberAlreadyExists)
	}

	current, err := countMembers(txn, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasCapacity(current) {
		return nil, fmt.Errorf("%s: %w", roomID, directory.ErrRoomFull)
	}

	info := &directory.MemberInfo{
		RoomID:   roomID,
		ID:       memberID,
		Name:     name,
		JoinedAt: time.Now(),
	}
	if err := txn.Insert(tblMembers, info); err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	txn.Commit()

	d.publishRoster(roomID)
	return info.DeepCopy(), nil
}

// FindMemberInfoByRoomID returns every member of the room.
func (d *DB) FindMemberInfoByRoomID(roomID string) ([]*directory.MemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tblMembers, idxMemberRoomID, roomID)
	if err != nil {
		return nil, fmt.Errorf("find members by roomID: %w", err)
	}
	var results []*directory.MemberInfo
	for obj := it.Next(); obj != nil; obj = it.Next() {
		results = append(results, obj.(*directory.MemberInfo).DeepCopy())
	}
	return results, nil
}

// DeleteMemberInfoByID removes a member from the room.
func (d *DB) DeleteMemberInfoByID(roomID, memberID string) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tblMembers, idxMemberID, roomID, memberID)
	if err != nil {
		return fmt.Errorf("find member by memberID: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("member %s in room %s: %w", memberID, roomID, directory.ErrMemberNotFound)
	}
	if err := txn.Delete(tblMembers, raw); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	txn.Commit()

	d.publishRoster(roomID)
	return nil
}

// SubscribeRoster subscribes to roster snapshots of the room.
func (d *DB) SubscribeRoster(roomID string) *subscription.Subscription {
	return d.broker.Subscribe(broker.Roster, broker.Detail(roomID))
}

// UnsubscribeRoster removes a roster subscription.
func (d *DB) UnsubscribeRoster(roomID string, sub *subscription.Subscription) error {
	return d.broker.Unsubscribe(broker.Roster, broker.Detail(roomID), sub)
}

// publishRoster pushes the current membership snapshot to subscribers.
func (d *DB) publishRoster(roomID string) {
	members, err := d.FindMemberInfoByRoomID(roomID)
	if err != nil {
		log.Printf("error occurs in reading roster for %s %v", roomID, err)
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)

	if err := d.broker.Publish(broker.Roster, broker.Detail(roomID), directory.Roster{
		RoomID:    roomID,
		MemberIDs: ids,
	}); err != nil {
		log.Printf("error occurs in publishing roster for %s %v", roomID, err)
	}
}

func countMembers(txn *memdb.Txn, roomID string) (int, error) {
	it, err := txn.Get(tblMembers, idxMemberRoomID, roomID)
	if err != nil {
		return 0, fmt.Errorf("count members by roomID: %w", err)
	}
	count := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		count++
	}
	return count, nil
}
