package page

// Element ids shared with the server-rendered billing page.
const (
	IDProductModal       = "product-modal"
	IDProductForm        = "product-form"
	IDModalTitle         = "modal-title"
	IDImagePreview       = "image-preview"
	IDProductName        = "product-name"
	IDProductCategory    = "product-category"
	IDProductPrice       = "product-price"
	IDProductDescription = "product-description"
	IDProductImage       = "product-image"
	IDCartItems          = "cart-items"
	IDProductsList       = "products-list"
	IDProductSearch      = "product-search"
	IDDiscountInput      = "discount-input"
	IDSubtotal           = "subtotal"
	IDTotalAmount        = "total-amount"
	IDLanguageToggle     = "language-toggle"
	IDCategoryBar        = "category-bar"
	IDCustomerName       = "customer-name"
	IDCustomerPhone      = "customer-phone"
	IDNotifications      = "notifications"
)

// Attribute and class names of the page contract.
const (
	AttrI18n         = "data-i18n"
	AttrAction       = "data-action"
	AttrCategory     = "data-category"
	AttrProductID    = "data-product-id"
	AttrQuantity     = "data-quantity"
	ClassCategory    = "category-btn"
	ClassActive      = "active"
	ClassEmptyCart   = "empty-cart"
	ClassPlaceholder = "product-image-placeholder-small"
)
