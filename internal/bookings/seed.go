package bookings

import "time"

// seedBookings is written when storage holds nothing yet.
func seedBookings() []Booking {
	return []Booking{
		{
			ID: 1,
			Draft: Draft{
				ServiceID:     "home",
				Date:          "2024-12-15",
				TimeSlot:      "9:00 AM",
				CustomerName:  "John Smith",
				CustomerEmail: "john@example.com",
				CustomerPhone: "555-0101",
				Address:       "123 Main St, Anytown",
			},
			Price:         89,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentPaid,
			CreatedAt:     mustTime("2024-12-01T10:00:00Z"),
		},
		{
			ID: 2,
			Draft: Draft{
				ServiceID:     "office",
				Date:          "2024-12-16",
				TimeSlot:      "11:00 AM",
				CustomerName:  "Sarah Johnson",
				CustomerEmail: "sarah@example.com",
				CustomerPhone: "555-0102",
				Address:       "456 Office Blvd, Business Park",
			},
			Price:         149,
			Status:        StatusPending,
			PaymentStatus: PaymentPending,
			CreatedAt:     mustTime("2024-12-02T14:30:00Z"),
		},
		{
			ID: 3,
			Draft: Draft{
				ServiceID:     "deep",
				Date:          "2024-12-17",
				TimeSlot:      "3:00 PM",
				CustomerName:  "Mike Wilson",
				CustomerEmail: "mike@example.com",
				CustomerPhone: "555-0103",
				Address:       "789 Lakeview Dr, Suburbia",
			},
			Price:         199,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentPaid,
			CreatedAt:     mustTime("2024-12-03T09:15:00Z"),
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
