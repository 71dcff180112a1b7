// Package report builds the tabular reports behind POST /api/reports/generate
// and decides how each one is delivered.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pryme0/vyb-q-admin/internal/models"
)

type Type string

const (
	Sales        Type = "sales"
	Orders       Type = "orders"
	PopularItems Type = "popular-items"
	Inventory    Type = "inventory"
	Reservations Type = "reservations"
)

func (t Type) Valid() bool {
	switch t {
	case Sales, Orders, PopularItems, Inventory, Reservations:
		return true
	}
	return false
}

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	PDF  Format = "pdf"
)

func (f Format) Valid() bool {
	switch f {
	case JSON, CSV, PDF:
		return true
	}
	return false
}

var (
	ErrUnknownType   = errors.New("unknown report type")
	ErrUnknownFormat = errors.New("unknown report format")
	ErrInvalidRange  = errors.New("invalid date range")
)

const dateLayout = "2006-01-02"

// Request is the body of a generate call. Dates are either plain dates or
// RFC 3339 timestamps; a plain end date covers that whole day.
type Request struct {
	Type       Type     `json:"type" binding:"required"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Format     Format   `json:"format"`
	Recipients []string `json:"recipients" binding:"omitempty,dive,email"`
}

// Normalize fills defaults and checks the enumerations and the range.
func (r *Request) Normalize() error {
	if r.Format == "" {
		r.Format = JSON
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
	}
	if !r.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, r.Format)
	}
	_, _, err := r.Range()
	return err
}

func (r Request) Range() (from, to *time.Time, err error) {
	if from, err = parseBound(r.StartDate, false); err != nil {
		return nil, nil, err
	}
	if to, err = parseBound(r.EndDate, true); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: endDate before startDate", ErrInvalidRange)
	}
	return from, to, nil
}

func parseBound(s string, end bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Report struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Summary     []Metric   `json:"summary"`
}

// Generate runs the query for req.Type over the requested range.
func Generate(ctx context.Context, d *gorm.DB, req Request, now time.Time) (*Report, error) {
	from, to, err := req.Range()
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:          uuid.NewString(),
		Type:        req.Type,
		StartDate:   from,
		EndDate:     to,
		GeneratedAt: now.UTC(),
		Rows:        [][]string{},
	}

	d = d.WithContext(ctx)
	switch req.Type {
	case Sales:
		err = salesReport(d, rep)
	case Orders:
		err = ordersReport(d, rep)
	case PopularItems:
		err = popularItemsReport(d, rep)
	case Inventory:
		err = inventoryReport(d, rep)
	case Reservations:
		err = reservationsReport(d, rep)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s report: %w", req.Type, err)
	}
	return rep, nil
}

func between(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q = q.Where(column+" <= ?", *to)
	}
	return q
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func billableOrders(d *gorm.DB, rep *Report) *gorm.DB {
	q := d.Model(&models.Order{}).Where("status <> ?", models.OrderCancelled)
	return between(q, "created_at", rep.StartDate, rep.EndDate)
}

func salesReport(d *gorm.DB, rep *Report) error {
	rep.Title = "Sales report"
	rep.Columns = []string{"Date", "Orders", "Subtotal", "Discounts", "Revenue"}

	var orders []models.Order
	if err := billableOrders(d, rep).Order("created_at").Find(&orders).Error; err != nil {
		return err
	}

	type day struct {
		orders                     int
		subtotal, discounts, total decimal.Decimal
	}
	byDay := map[string]*day{}
	var days []string
	revenue := decimal.Zero
	for _, o := range orders {
		key := o.CreatedAt.UTC().Format(dateLayout)
		agg, ok := byDay[key]
		if !ok {
			agg = &day{}
			byDay[key] = agg
			days = append(days, key)
		}
		agg.orders++
		agg.subtotal = agg.subtotal.Add(decimal.NewFromFloat(o.Subtotal))
		agg.discounts = agg.discounts.Add(decimal.NewFromFloat(o.DiscountTotal))
		agg.total = agg.total.Add(decimal.NewFromFloat(o.Total))
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))
	}
	sort.Strings(days)

	for _, k := range days {
		agg := byDay[k]
		rep.Rows = append(rep.Rows, []string{k, strconv.Itoa(agg.orders), money(agg.subtotal), money(agg.discounts), money(agg.total)})
	}

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}
	rep.Summary = []Metric{
		{Label: "Orders", Value: strconv.Itoa(len(orders))},
		{Label: "Revenue", Value: money(revenue)},
		{Label: "Average order value", Value: money(avg)},
	}
	return nil
}

func ordersReport(d *gorm.DB, rep *Report) error {
	rep.Title = "Orders report"
	rep.Columns = []string{"Order", "Date", "Customer", "Status", "Items", "Total"}

	var orders []models.Order
	q := between(d.Model(&models.Order{}), "created_at", rep.StartDate, rep.EndDate)
	if err := q.Preload("Items").Preload("Customer").Order("created_at, id").Find(&orders).Error; err != nil {
		return err
	}

	counts := map[models.OrderStatus]int{}
	for _, o := range orders {
		customer := "walk-in"
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		var items uint
		for _, it := range o.Items {
			items += it.Quantity
		}
		counts[o.Status]++
		rep.Rows = append(rep.Rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			o.CreatedAt.UTC().Format(time.RFC3339),
			customer,
			string(o.Status),
			strconv.FormatUint(uint64(items), 10),
			money(decimal.NewFromFloat(o.Total)),
		})
	}

	rep.Summary = []Metric{{Label: "Orders", Value: strconv.Itoa(len(orders))}}
	for _, s := range []struct {
		label  string
		status models.OrderStatus
	}{
		{"Pending", models.OrderPending},
		{"Out for delivery", models.OrderOutForDelivery},
		{"Completed", models.OrderCompleted},
		{"Cancelled", models.OrderCancelled},
	} {
		rep.Summary = append(rep.Summary, Metric{Label: s.label, Value: strconv.Itoa(counts[s.status])})
	}
	return nil
}

func popularItemsReport(d *gorm.DB, rep *Report) error {
	rep.Title = "Popular items report"
	rep.Columns = []string{"Menu item", "Name", "Orders", "Quantity", "Revenue"}

	var items []models.OrderItem
	orderIDs := billableOrders(d, rep).Select("id")
	if err := d.Where("order_id IN (?)", orderIDs).Find(&items).Error; err != nil {
		return err
	}

	type agg struct {
		id       uint
		name     string
		orders   map[uint]struct{}
		quantity uint
		revenue  decimal.Decimal
	}
	byItem := map[uint]*agg{}
	for _, it := range items {
		a, ok := byItem[it.MenuItemID]
		if !ok {
			a = &agg{id: it.MenuItemID, name: it.Name, orders: map[uint]struct{}{}}
			byItem[it.MenuItemID] = a
		}
		a.orders[it.OrderID] = struct{}{}
		a.quantity += it.Quantity
		a.revenue = a.revenue.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	ranked := make([]*agg, 0, len(byItem))
	for _, a := range byItem {
		ranked = append(ranked, a)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].quantity != ranked[j].quantity {
			return ranked[i].quantity > ranked[j].quantity
		}
		return ranked[i].id < ranked[j].id
	})

	for _, a := range ranked {
		rep.Rows = append(rep.Rows, []string{
			strconv.FormatUint(uint64(a.id), 10),
			a.name,
			strconv.Itoa(len(a.orders)),
			strconv.FormatUint(uint64(a.quantity), 10),
			money(a.revenue),
		})
	}

	rep.Summary = []Metric{{Label: "Distinct items", Value: strconv.Itoa(len(ranked))}}
	if len(ranked) > 0 {
		rep.Summary = append(rep.Summary, Metric{Label: "Top item", Value: ranked[0].name})
	}
	return nil
}

// inventoryReport is a stock snapshot; the date range does not apply.
func inventoryReport(d *gorm.DB, rep *Report) error {
	rep.Title = "Inventory report"
	rep.Columns = []string{"Item", "Quantity", "Unit", "Reorder level", "Cost per unit", "Stock value", "Low stock"}

	var stock []models.InventoryItem
	if err := d.Order("name").Find(&stock).Error; err != nil {
		return err
	}

	value := decimal.Zero
	low := 0
	for _, it := range stock {
		v := decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.CostPerUnit))
		value = value.Add(v)
		flag := "no"
		if it.IsLowStock() {
			flag = "yes"
			low++
		}
		rep.Rows = append(rep.Rows, []string{
			it.Name,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			it.Unit,
			strconv.FormatFloat(it.ReorderLevel, 'f', -1, 64),
			money(decimal.NewFromFloat(it.CostPerUnit)),
			money(v),
			flag,
		})
	}

	rep.Summary = []Metric{
		{Label: "Items", Value: strconv.Itoa(len(stock))},
		{Label: "Low stock", Value: strconv.Itoa(low)},
		{Label: "Stock value", Value: money(value)},
	}
	return nil
}

func reservationsReport(d *gorm.DB, rep *Report) error {
	rep.Title = "Reservations report"
	rep.Columns = []string{"Reservation", "Date", "Name", "Party size", "Status", "Phone"}

	var rs []models.Reservation
	q := between(d.Model(&models.Reservation{}), "reserved_at", rep.StartDate, rep.EndDate)
	if err := q.Order("reserved_at, id").Find(&rs).Error; err != nil {
		return err
	}

	guests := 0
	confirmed := 0
	for _, r := range rs {
		if r.Status != models.ReservationCancelled {
			guests += r.PartySize
		}
		if r.Status == models.ReservationConfirmed {
			confirmed++
		}
		rep.Rows = append(rep.Rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.ReservedAt.UTC().Format(time.RFC3339),
			r.Name,
			strconv.Itoa(r.PartySize),
			string(r.Status),
			r.Phone,
		})
	}

	rep.Summary = []Metric{
		{Label: "Reservations", Value: strconv.Itoa(len(rs))},
		{Label: "Confirmed", Value: strconv.Itoa(confirmed)},
		{Label: "Expected guests", Value: strconv.Itoa(guests)},
	}
	return nil
}
