// Package docstore implements the remote document store behind the catalog
// and the order repository. Memory keeps everything in an in-process
// go-memdb database; Dynamo talks to a DynamoDB table.
package docstore

import (
	"context"
	"sort"
	"time"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/storefront"
)

const (
	tableProduct  = "product"
	tableCategory = "category"
	tableColor    = "color"
	tableSize     = "size"
	tableSetting  = "setting"
	tableOrder    = "order"

	settingsID = "app"
)

type colorRecord struct {
	Key   string
	Type  string
	Seq   int
	Color catalog.FlowerColor
}

type sizeRecord struct {
	Key  string
	Type string
	Seq  int
	Size catalog.StemSize
}

type settingsRecord struct {
	ID       string
	Settings catalog.Settings
}

func idIndex(field string) *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    "id",
		Unique:  true,
		Indexer: &memdb.StringFieldIndex{Field: field},
	}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProduct: {
				Name: tableProduct,
				Indexes: map[string]*memdb.IndexSchema{
					"id": idIndex("ID"),
					"category": {
						Name:         "category",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "CategoryID"},
					},
				},
			},
			tableCategory: {
				Name:    tableCategory,
				Indexes: map[string]*memdb.IndexSchema{"id": idIndex("ID")},
			},
			tableColor: {
				Name: tableColor,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex("Key"),
					"type": {Name: "type", Indexer: &memdb.StringFieldIndex{Field: "Type"}},
				},
			},
			tableSize: {
				Name: tableSize,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex("Key"),
					"type": {Name: "type", Indexer: &memdb.StringFieldIndex{Field: "Type"}},
				},
			},
			tableSetting: {
				Name:    tableSetting,
				Indexes: map[string]*memdb.IndexSchema{"id": idIndex("ID")},
			},
			tableOrder: {
				Name: tableOrder,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex("ID"),
					"user": {Name: "user", Indexer: &memdb.StringFieldIndex{Field: "UserID"}},
				},
			},
		},
	}
}

// Memory is an in-process document store. It satisfies both catalog.Source
// and order.Repository.
type Memory struct {
	db    *memdb.MemDB
	newID func() string
}

// NewMemory creates an empty store.
func NewMemory() (*Memory, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Memory{db: db, newID: storefront.NewOrderID}, nil
}

// Seed copies every catalog document from src, replacing what is stored.
func (m *Memory) Seed(ctx context.Context, src catalog.Source) error {
	products, err := src.Products(ctx)
	if err != nil {
		return err
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return err
	}
	colors, err := src.AllColors(ctx)
	if err != nil {
		return err
	}
	sizes, err := src.StemSizes(ctx)
	if err != nil {
		return err
	}
	settings, err := src.Settings(ctx)
	if err != nil {
		return err
	}

	txn := m.db.Txn(true)
	defer txn.Abort()
	for _, table := range []string{tableProduct, tableCategory, tableColor, tableSize, tableSetting} {
		if _, err := txn.DeleteAll(table, "id"); err != nil {
			return err
		}
	}
	for i := range products {
		p := products[i]
		if err := txn.Insert(tableProduct, &p); err != nil {
			return err
		}
	}
	for i := range categories {
		c := categories[i]
		if err := txn.Insert(tableCategory, &c); err != nil {
			return err
		}
	}
	for flowerType, list := range colors {
		for i, c := range list {
			rec := &colorRecord{Key: flowerType + "|" + c.ID, Type: flowerType, Seq: i, Color: c}
			if err := txn.Insert(tableColor, rec); err != nil {
				return err
			}
		}
	}
	for flowerType, list := range sizes {
		for i, s := range list {
			rec := &sizeRecord{Key: flowerType + "|" + s.ID, Type: flowerType, Seq: i, Size: s}
			if err := txn.Insert(tableSize, rec); err != nil {
				return err
			}
		}
	}
	if settings != nil {
		if err := txn.Insert(tableSetting, &settingsRecord{ID: settingsID, Settings: *settings}); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

// PutProduct inserts or replaces one product.
func (m *Memory) PutProduct(ctx context.Context, p catalog.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableProduct, &p); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *Memory) Products(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableProduct, "id")
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, cloneProduct(*obj.(*catalog.Product)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ProductsInCategory returns the products filed under categoryID.
func (m *Memory) ProductsInCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableProduct, "category", categoryID)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, cloneProduct(*obj.(*catalog.Product)))
	}
	return out, nil
}

func (m *Memory) Categories(ctx context.Context) ([]catalog.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableCategory, "id")
	if err != nil {
		return nil, err
	}
	var out []catalog.Category
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*catalog.Category))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *Memory) Colors(ctx context.Context, flowerType string) ([]catalog.FlowerColor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableColor, "type", flowerType)
	if err != nil {
		return nil, err
	}
	var recs []*colorRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		recs = append(recs, obj.(*colorRecord))
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
	out := make([]catalog.FlowerColor, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Color)
	}
	return out, nil
}

func (m *Memory) AllColors(ctx context.Context) (map[string][]catalog.FlowerColor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableColor, "id")
	if err != nil {
		return nil, err
	}
	var recs []*colorRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		recs = append(recs, obj.(*colorRecord))
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
	out := make(map[string][]catalog.FlowerColor)
	for _, r := range recs {
		out[r.Type] = append(out[r.Type], r.Color)
	}
	return out, nil
}

func (m *Memory) StemSizes(ctx context.Context) (map[string][]catalog.StemSize, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableSize, "id")
	if err != nil {
		return nil, err
	}
	var recs []*sizeRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		recs = append(recs, obj.(*sizeRecord))
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
	out := make(map[string][]catalog.StemSize)
	for _, r := range recs {
		out[r.Type] = append(out[r.Type], r.Size)
	}
	return out, nil
}

func (m *Memory) Settings(ctx context.Context) (*catalog.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	obj, err := txn.First(tableSetting, "id", settingsID)
	if err != nil || obj == nil {
		return nil, err
	}
	s := obj.(*settingsRecord).Settings
	s.QuantityOptions = append([]int(nil), s.QuantityOptions...)
	return &s, nil
}

// Create stores a new order under a generated id.
func (m *Memory) Create(ctx context.Context, o order.Order) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	o = cloneOrder(o)
	o.ID = m.newID()
	txn := m.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableOrder, &o); err != nil {
		return "", err
	}
	txn.Commit()
	return o.ID, nil
}

func (m *Memory) Get(ctx context.Context, id string) (order.Order, error) {
	if err := ctx.Err(); err != nil {
		return order.Order{}, err
	}
	txn := m.db.Txn(false)
	obj, err := txn.First(tableOrder, "id", id)
	if err != nil {
		return order.Order{}, err
	}
	if obj == nil {
		return order.Order{}, storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	return cloneOrder(*obj.(*order.Order)), nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := m.db.Txn(false)
	it, err := txn.Get(tableOrder, "user", userID)
	if err != nil {
		return nil, err
	}
	var out []order.Order
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, cloneOrder(*obj.(*order.Order)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error {
	return m.update(ctx, id, func(o *order.Order) error {
		if err := order.CheckTransition(o.Status, status); err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = at
		return nil
	})
}

func (m *Memory) MarkMessageSent(ctx context.Context, id string, at time.Time) error {
	return m.update(ctx, id, func(o *order.Order) error {
		o.MessageSent = true
		o.MessageSentAt = &at
		o.UpdatedAt = at
		return nil
	})
}

func (m *Memory) update(ctx context.Context, id string, apply func(*order.Order) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()
	obj, err := txn.First(tableOrder, "id", id)
	if err != nil {
		return err
	}
	if obj == nil {
		return storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	o := cloneOrder(*obj.(*order.Order))
	if err := apply(&o); err != nil {
		return err
	}
	if err := txn.Insert(tableOrder, &o); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func cloneProduct(p catalog.Product) catalog.Product {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

func cloneOrder(o order.Order) order.Order {
	lines := make([]order.Line, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = l.Clone()
	}
	o.Lines = lines
	if o.Delivery.Address != nil {
		a := *o.Delivery.Address
		o.Delivery.Address = &a
	}
	if o.MessageSentAt != nil {
		t := *o.MessageSentAt
		o.MessageSentAt = &t
	}
	return o
}

var _ catalog.Source = (*Memory)(nil)
var _ order.Repository = (*Memory)(nil)
