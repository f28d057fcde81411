package i18n

const (
	English = "en"
	Tamil   = "ta"
)

var translations = map[string]map[string]string{
	English: {
		"products":         "Products",
		"cart":             "Cart",
		"clear":            "Clear",
		"cart_empty":       "Cart is empty",
		"subtotal":         "Subtotal:",
		"tax":              "Tax",
		"discount":         "Discount:",
		"total":            "Total:",
		"customer_details": "Customer Details",
		"customer_name":    "Name:",
		"customer_phone":   "Phone:",
		"process_order":    "Process Order",
		"add_to_cart":      "Add to Cart",
		"remove":           "Remove",
		"quantity":         "Quantity",
		"price":            "Price",
		"total_amount":     "Total Amount",
	},
	Tamil: {
		"products":         "தயாரிப்புகள்",
		"cart":             "கார்ட்",
		"clear":            "அழிக்க",
		"cart_empty":       "கார்ட் காலியாக உள்ளது",
		"subtotal":         "உப தொகை:",
		"tax":              "வரி",
		"discount":         "தள்ளுபடி:",
		"total":            "மொத்தம்:",
		"customer_details": "வாடிக்கையாளர் விவரங்கள்",
		"customer_name":    "பெயர்:",
		"customer_phone":   "தொலைபேசி:",
		"process_order":    "ஆர்டர் செய்ய",
		"add_to_cart":      "கார்ட்டில் சேர்",
		"remove":           "நீக்கு",
		"quantity":         "அளவு",
		"price":            "விலை",
		"total_amount":     "மொத்த தொகை",
	},
}
