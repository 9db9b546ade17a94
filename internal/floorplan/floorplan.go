// Package floorplan renders which tables are taken on a date, one column per
// time slot.
package floorplan

import (
	"io"
	"slices"
	"strconv"

	"tablebook/internal/domains/booking/model"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	markFree   = "free"
	markBooked = "booked"
)

type Plan struct {
	Date   string
	Slots  []string
	Tables int
	booked map[string]map[int]bool
}

// Build lays the bookings of one date onto tables 1..tables. Slots that hold a
// booking but are missing from slots are appended in sorted order.
func Build(date string, slots []string, tables int, bookings []model.Booking) Plan {
	booked := make(map[string]map[int]bool)

	for _, booking := range bookings {
		if booking.Date != date {
			continue
		}

		if booked[booking.TimeSlot] == nil {
			booked[booking.TimeSlot] = make(map[int]bool)
		}

		booked[booking.TimeSlot][booking.TableNumber] = true
	}

	extra := lo.Without(lo.Keys(booked), slots...)
	slices.Sort(extra)

	return Plan{
		Date:   date,
		Slots:  append(slices.Clone(slots), extra...),
		Tables: tables,
		booked: booked,
	}
}

func (p Plan) Booked(slot string, table int) bool {
	return p.booked[slot][table]
}

// Free counts the open tables of slot.
func (p Plan) Free(slot string) int {
	return p.Tables - len(lo.Filter(lo.Keys(p.booked[slot]), func(table int, _ int) bool {
		return table >= 1 && table <= p.Tables
	}))
}

// Render writes the grid to w. Without colored the cells are plain text.
func (p Plan) Render(w io.Writer, colored bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Table"}, p.Slots...))
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)

	for number := 1; number <= p.Tables; number++ {
		row := []string{strconv.Itoa(number)}

		for _, slot := range p.Slots {
			row = append(row, p.cell(slot, number, colored))
		}

		table.Append(row)
	}

	footer := []string{"Free"}
	for _, slot := range p.Slots {
		footer = append(footer, strconv.Itoa(p.Free(slot)))
	}

	table.SetFooter(footer)
	table.SetFooterAlignment(tablewriter.ALIGN_CENTER)
	table.Render()
}

func (p Plan) cell(slot string, table int, colored bool) string {
	if !p.Booked(slot, table) {
		return lo.Ternary(colored, color.FgGreen.Render(markFree), markFree)
	}

	return lo.Ternary(colored, color.FgRed.Render(markBooked), markBooked)
}
