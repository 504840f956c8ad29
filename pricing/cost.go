package pricing

import (
	"math"
	"time"

	"github.com/manivpc/manivpc-api/models"
)

// Business location used as the origin for home-build travel pricing
const (
	BusinessLatitude  = 32.1467
	BusinessLongitude = 34.8397
)

const (
	baseServiceRate = 0.10

	consultationOnlyFactor = 0.2
	buildOnlyFactor        = 0.8
	combinedFactor         = 1.0

	homeBuildMinimumFee = 50.0
	homeBuildPerKmRate  = 3.0

	shippingFlatFee = 150.0

	// WeekendFee is added once when the build is scheduled on a weekend slot
	WeekendFee = 50

	// ConsultationShare of the total cost is collected up front when the
	// service includes a consultation
	ConsultationShare = 0.2

	earthRadiusKm = 6371.0
)

// serviceFactor maps a service type to its share of the base service rate
func serviceFactor(serviceType models.ServiceType) float64 {
	switch serviceType {
	case models.ServiceConsultationOnly:
		return consultationOnlyFactor
	case models.ServiceBuildOnly:
		return buildOnlyFactor
	default:
		return combinedFactor
	}
}

// HaversineKm returns the great-circle distance in kilometers between two
// coordinates
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// LocationCost prices the delivery choice. Home builds charge travel from
// the business location with a minimum call-out fee, shipping is a flat
// rate, and pickup is free. Home builds with no resolvable coordinates
// fall back to the minimum fee.
func LocationCost(deliveryType models.DeliveryType, lat, lon *float64) float64 {
	switch deliveryType {
	case models.DeliveryBuildAtHome:
		if lat == nil || lon == nil {
			return homeBuildMinimumFee
		}
		km := HaversineKm(BusinessLatitude, BusinessLongitude, *lat, *lon)
		return math.Max(homeBuildMinimumFee, km*homeBuildPerKmRate)
	case models.DeliveryShipping:
		return shippingFlatFee
	default:
		return 0
	}
}

// ServiceCost computes the quoted service cost in whole shekels, floored.
// A non-positive budget always prices to zero. The referral discount
// applies last, over the location charge too.
func ServiceCost(budget float64, serviceType models.ServiceType, deliveryType models.DeliveryType, lat, lon *float64, discountPercent int) int {
	if budget <= 0 {
		return 0
	}

	cost := budget * baseServiceRate * serviceFactor(serviceType)
	cost += LocationCost(deliveryType, lat, lon)

	if discountPercent > 0 {
		cost *= float64(100-discountPercent) / 100
	}

	return int(math.Floor(cost))
}

// PeripheralsFee is the extra service charge for sourcing peripherals,
// added at approval time
func PeripheralsFee(peripheralsBudget float64) int {
	if peripheralsBudget <= 0 {
		return 0
	}
	return int(math.Round(peripheralsBudget * baseServiceRate))
}

// ConsultationPayment is the up-front payment due before parts upload
func ConsultationPayment(totalCost int) int {
	return int(math.Round(float64(totalCost) * ConsultationShare))
}

// IsWeekendSlot reports whether a build slot falls on the weekend, which
// adds the weekend fee. Friday from 16:00 onward and all of Saturday count.
func IsWeekendSlot(slot time.Time) bool {
	switch slot.Weekday() {
	case time.Saturday:
		return true
	case time.Friday:
		return slot.Hour() >= 16
	}
	return false
}
