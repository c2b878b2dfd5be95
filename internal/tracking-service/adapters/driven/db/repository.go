package db

type Repository struct {
	TrackingRepository  *TrackingRepository
	ViolationRepository *ViolationRepository
	GeofenceRepository  *GeofenceRepository
	RouteRepository     *RouteRepository
	VehicleRepository   *VehicleRepository
}

func New(db *DataBase) *Repository {
	return &Repository{
		TrackingRepository:  NewTrackingRepository(db),
		ViolationRepository: NewViolationRepository(db),
		GeofenceRepository:  NewGeofenceRepository(db),
		RouteRepository:     NewRouteRepository(db),
		VehicleRepository:   NewVehicleRepository(db),
	}
}
