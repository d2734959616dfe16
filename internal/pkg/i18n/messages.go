package i18n

// Message keys shared by the validator, the order services and the HTTP layer.
const (
	KeyFirstNameInvalid     = "validation.firstName"
	KeyLastNameInvalid      = "validation.lastName"
	KeyPhoneInvalid         = "validation.phone"
	KeyEmailInvalid         = "validation.email"
	KeyStreetAddressInvalid = "validation.streetAddress"
	KeyCityInvalid          = "validation.city"
	KeyStateInvalid         = "validation.state"
	KeyPostcodeInvalid      = "validation.postcode"

	KeyEmptyCart            = "checkout.emptyCart"
	KeyCorrectErrors        = "checkout.correctErrors"
	KeyOrderError           = "checkout.orderError"
	KeyUnsupportedPayment   = "checkout.unsupportedPayment"
	KeySubmissionInProgress = "checkout.submissionInProgress"
	KeyNotificationFailed   = "checkout.notificationFailed"
	KeyNotificationNoItems  = "checkout.notificationNoItems"

	KeyOrderIDRequired  = "tracking.orderIdRequired"
	KeyPhoneRequired    = "tracking.phoneRequired"
	KeyOrderNotFound    = "tracking.orderNotFound"
	KeyOrderSuggestions = "tracking.orderSuggestions"
	KeyNoOrdersForPhone = "tracking.noOrdersForPhone"
	KeyQueryFailed      = "tracking.queryFailed"
	KeyTimeout          = "tracking.timeout"
	KeyUnexpected       = "common.unexpected"

	KeyOutOfStock      = "cart.outOfStock"
	KeyExceedsStock    = "cart.exceedsStock"
	KeyInvalidQuantity = "cart.invalidQuantity"
	KeyItemNotInCart   = "cart.itemNotInCart"
	KeyProductNotFound = "catalog.productNotFound"

	KeyInvalidStatus = "admin.invalidStatus"
)

var catalogs = map[Locale]map[string]string{
	English: {
		KeyFirstNameInvalid:     "First name must be at least 2 characters long",
		KeyLastNameInvalid:      "Last name must be at least 2 characters long",
		KeyPhoneInvalid:         "Please enter a valid phone number",
		KeyEmailInvalid:         "Please enter a valid email address",
		KeyStreetAddressInvalid: "Street address must be at least 5 characters long",
		KeyCityInvalid:          "City must be at least 2 characters long",
		KeyStateInvalid:         "State/Governorate must be at least 2 characters long",
		KeyPostcodeInvalid:      "Postal code must be at least 3 characters long",

		KeyEmptyCart:            "Your cart is empty",
		KeyCorrectErrors:        "Please correct the highlighted fields",
		KeyOrderError:           "We could not place your order, please try again",
		KeyUnsupportedPayment:   "Only cash on delivery is available",
		KeySubmissionInProgress: "Your order is already being submitted",
		KeyNotificationFailed:   "Order placed, but the WhatsApp notification could not be sent",
		KeyNotificationNoItems:  "Order placed, but no product details were found for the WhatsApp message",

		KeyOrderIDRequired:  "Order number is required",
		KeyPhoneRequired:    "Phone number is required",
		KeyOrderNotFound:    "Order not found. Make sure you entered the correct order number",
		KeyOrderSuggestions: "Order not found exactly. Did you mean one of these orders?",
		KeyNoOrdersForPhone: "No orders found for this phone number",
		KeyQueryFailed:      "Something went wrong while fetching orders, please try again",
		KeyTimeout:          "The request took too long, please try again",
		KeyUnexpected:       "An unexpected error occurred",

		KeyOutOfStock:      "This product is out of stock",
		KeyExceedsStock:    "Requested quantity exceeds available stock",
		KeyInvalidQuantity: "Quantity must be at least 1",
		KeyItemNotInCart:   "This product is not in your cart",
		KeyProductNotFound: "Product not found",

		KeyInvalidStatus: "Unknown order status",

		"status.pending":        "Pending",
		"status.paid":           "Paid",
		"status.shipped":        "Shipped",
		"status.delivered":      "Delivered",
		"status.cancelled":      "Cancelled",
		"status.pending.desc":   "Your order has been received and is awaiting confirmation",
		"status.paid.desc":      "Your order has been confirmed",
		"status.shipped.desc":   "Your order is on its way",
		"status.delivered.desc": "Your order has been delivered",
		"status.cancelled.desc": "This order has been cancelled",

		"step.pending":   "Order Placed",
		"step.paid":      "Order Confirmed",
		"step.shipped":   "In Transit",
		"step.delivered": "Delivered",
	},
	Arabic: {
		KeyFirstNameInvalid:     "يجب أن يتكون الاسم الأول من حرفين على الأقل",
		KeyLastNameInvalid:      "يجب أن يتكون اسم العائلة من حرفين على الأقل",
		KeyPhoneInvalid:         "يرجى إدخال رقم هاتف صحيح",
		KeyEmailInvalid:         "يرجى إدخال بريد إلكتروني صحيح",
		KeyStreetAddressInvalid: "يجب أن يتكون عنوان الشارع من 5 أحرف على الأقل",
		KeyCityInvalid:          "يجب أن تتكون المدينة من حرفين على الأقل",
		KeyStateInvalid:         "يجب أن تتكون المحافظة من حرفين على الأقل",
		KeyPostcodeInvalid:      "يجب أن يتكون الرمز البريدي من 3 أحرف على الأقل",

		KeyEmptyCart:            "سلة التسوق فارغة",
		KeyCorrectErrors:        "يرجى تصحيح الحقول المحددة",
		KeyOrderError:           "تعذر إنشاء الطلب، يرجى المحاولة مرة أخرى",
		KeyUnsupportedPayment:   "الدفع عند الاستلام هو الخيار الوحيد المتاح",
		KeySubmissionInProgress: "جاري إرسال طلبك بالفعل",
		KeyNotificationFailed:   "تم إنشاء الطلب بنجاح، لكن حدث خطأ في إرسال إشعار واتساب",
		KeyNotificationNoItems:  "تم إنشاء الطلب بنجاح، لكن لم يتم العثور على تفاصيل المنتجات لإرسال واتساب",

		KeyOrderIDRequired:  "رقم الطلب مطلوب",
		KeyPhoneRequired:    "رقم الهاتف مطلوب",
		KeyOrderNotFound:    "لم يتم العثور على الطلب. تأكد من إدخال رقم الطلب الصحيح",
		KeyOrderSuggestions: "لم يتم العثور على الطلب بالضبط. هل تقصد أحد هذه الطلبات؟",
		KeyNoOrdersForPhone: "لا توجد طلبات لهذا الرقم",
		KeyQueryFailed:      "حدث خطأ في البحث عن الطلبات",
		KeyTimeout:          "استغرق الطلب وقتا طويلا، يرجى المحاولة مرة أخرى",
		KeyUnexpected:       "حدث خطأ غير متوقع",

		KeyOutOfStock:      "هذا المنتج غير متوفر",
		KeyExceedsStock:    "الكمية المطلوبة تتجاوز المخزون المتاح",
		KeyInvalidQuantity: "يجب أن تكون الكمية 1 على الأقل",
		KeyItemNotInCart:   "هذا المنتج غير موجود في السلة",
		KeyProductNotFound: "المنتج غير موجود",

		KeyInvalidStatus: "حالة الطلب غير معروفة",

		"status.pending":        "قيد الانتظار",
		"status.paid":           "مدفوع",
		"status.shipped":        "تم الشحن",
		"status.delivered":      "تم التسليم",
		"status.cancelled":      "ملغي",
		"status.pending.desc":   "تم استلام طلبك وهو في انتظار التأكيد",
		"status.paid.desc":      "تم تأكيد طلبك",
		"status.shipped.desc":   "طلبك في الطريق إليك",
		"status.delivered.desc": "تم تسليم طلبك",
		"status.cancelled.desc": "تم إلغاء هذا الطلب",

		"step.pending":   "تم الطلب",
		"step.paid":      "تم التأكيد",
		"step.shipped":   "قيد التوصيل",
		"step.delivered": "تم التسليم",
	},
}
