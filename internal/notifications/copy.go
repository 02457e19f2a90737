package notifications

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// notificationCopy holds both language renditions of a notification. Rows are
// written bilingual at insert time so the reader's locale never needs a
// re-render.
type notificationCopy struct {
	TitleEn   string
	TitleAr   string
	MessageEn string
	MessageAr string
}

func copyFor(notificationType enums.NotificationType) notificationCopy {
	switch notificationType {
	case enums.NotificationTypeContractCreated:
		return notificationCopy{
			TitleEn:   "New contract",
			TitleAr:   "عقد جديد",
			MessageEn: "A new contract is ready for your signature.",
			MessageAr: "هناك عقد جديد بانتظار توقيعك.",
		}
	case enums.NotificationTypeContractSigned:
		return notificationCopy{
			TitleEn:   "Contract signed",
			TitleAr:   "تم توقيع العقد",
			MessageEn: "The other party signed the contract. Your signature is still required.",
			MessageAr: "وقّع الطرف الآخر العقد. توقيعك لا يزال مطلوبًا.",
		}
	case enums.NotificationTypeContractExecuted:
		return notificationCopy{
			TitleEn:   "Contract executed",
			TitleAr:   "تم تنفيذ العقد",
			MessageEn: "Both parties signed. The contract is now in effect.",
			MessageAr: "وقّع الطرفان العقد وأصبح ساري المفعول.",
		}
	case enums.NotificationTypeContractWithdrawn:
		return notificationCopy{
			TitleEn:   "Contract withdrawn",
			TitleAr:   "تم سحب العقد",
			MessageEn: "The other party withdrew their signature and the contract was removed.",
			MessageAr: "سحب الطرف الآخر توقيعه وتمت إزالة العقد.",
		}
	case enums.NotificationTypeContractRejected:
		return notificationCopy{
			TitleEn:   "Contract rejected",
			TitleAr:   "تم رفض العقد",
			MessageEn: "The other party rejected the contract.",
			MessageAr: "رفض الطرف الآخر العقد.",
		}
	case enums.NotificationTypeTermsUpdated:
		return notificationCopy{
			TitleEn:   "Terms updated",
			TitleAr:   "تم تحديث الشروط",
			MessageEn: "The contract terms changed. Previous signatures were cleared.",
			MessageAr: "تغيّرت شروط العقد وتم إلغاء التوقيعات السابقة.",
		}
	case enums.NotificationTypeBookingResponse:
		return notificationCopy{
			TitleEn:   "Seller responded",
			TitleAr:   "رد مقدم الخدمة",
			MessageEn: "The seller responded to your booking request.",
			MessageAr: "رد مقدم الخدمة على طلب الحجز الخاص بك.",
		}
	case enums.NotificationTypeQuoteReceived:
		return notificationCopy{
			TitleEn:   "New quote",
			TitleAr:   "عرض سعر جديد",
			MessageEn: "You received a new quote on your maintenance request.",
			MessageAr: "تلقيت عرض سعر جديدًا على طلب الصيانة الخاص بك.",
		}
	default:
		return notificationCopy{
			TitleEn:   "Notification",
			TitleAr:   "إشعار",
			MessageEn: "You have a new notification.",
			MessageAr: "لديك إشعار جديد.",
		}
	}
}

func bookingCounteredCopy(counterPrice *decimal.Decimal) notificationCopy {
	base := copyFor(enums.NotificationTypeBookingResponse)
	if counterPrice != nil {
		price := counterPrice.StringFixed(2)
		base.MessageEn = fmt.Sprintf("The seller proposed a counter-offer of %s SAR on your booking request.", price)
		base.MessageAr = fmt.Sprintf("اقترح مقدم الخدمة عرضًا مقابلًا بقيمة %s ريال على طلب الحجز الخاص بك.", price)
	}
	return base
}

func quoteSubmittedCopy(price decimal.Decimal) notificationCopy {
	base := copyFor(enums.NotificationTypeQuoteReceived)
	amount := price.StringFixed(2)
	base.MessageEn = fmt.Sprintf("You received a quote of %s SAR on your maintenance request.", amount)
	base.MessageAr = fmt.Sprintf("تلقيت عرض سعر بقيمة %s ريال على طلب الصيانة الخاص بك.", amount)
	return base
}
