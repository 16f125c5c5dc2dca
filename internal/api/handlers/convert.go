package handlers

import (
	"shipping-decision-service/internal/api/dto"
	"shipping-decision-service/internal/domain"
)

func locationFromDTO(in dto.LocationRequest) domain.Location {
	return domain.Location{
		Street:      in.Street,
		City:        in.City,
		CountryCode: in.CountryCode,
		PostalCode:  in.PostalCode,
	}
}

func packageFromDTO(in dto.PackageRequest) domain.PackageInfo {
	return domain.PackageInfo{
		WeightKG: in.WeightKG,
		LengthCM: in.LengthCM,
		WidthCM:  in.WidthCM,
		HeightCM: in.HeightCM,
		Fragile:  in.Fragile,
	}
}

func trackingToDTO(info domain.TrackingInfo) dto.TrackingResponse {
	events := make([]dto.TrackingEventResponse, 0, len(info.Events))
	for _, ev := range info.Events {
		events = append(events, dto.TrackingEventResponse{
			Timestamp:   ev.Timestamp,
			Status:      string(ev.Status),
			Location:    ev.Location,
			Description: ev.Description,
		})
	}

	res := dto.TrackingResponse{
		Carrier:          info.Carrier,
		TrackingNumber:   info.TrackingNumber,
		Status:           string(info.Status),
		EstimatedArrival: info.EstimatedArrival,
		CurrentLocation:  info.CurrentLocation,
		Events:           events,
	}
	if !info.LastUpdated.IsZero() {
		updated := info.LastUpdated
		res.LastUpdated = &updated
	}
	return res
}
