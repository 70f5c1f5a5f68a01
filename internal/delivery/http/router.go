package http

import (
	"net/http"

	"clinic-management/internal/delivery/http/handler"
	"clinic-management/internal/delivery/http/middleware"
	"clinic-management/internal/domain/entity"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	patientHandler        *handler.PatientHandler
	doctorHandler         *handler.DoctorHandler
	billingHandler        *handler.BillingHandler
	medicationHandler     *handler.MedicationHandler
	roleHandler           *handler.RoleHandler
	staffHandler          *handler.StaffHandler
	specializationHandler *handler.SpecializationHandler
	auditLogHandler       *handler.AuditLogHandler
	patientAdminHandler   *handler.PatientAdminHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	metricsMiddleware     *middleware.MetricsMiddleware
	metricsHandler        http.Handler
}

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Auth           *handler.AuthHandler
	Patient        *handler.PatientHandler
	Doctor         *handler.DoctorHandler
	Billing        *handler.BillingHandler
	Medication     *handler.MedicationHandler
	Role           *handler.RoleHandler
	Staff          *handler.StaffHandler
	Specialization *handler.SpecializationHandler
	AuditLog       *handler.AuditLogHandler
	PatientAdmin   *handler.PatientAdminHandler
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           handlers.Auth,
		patientHandler:        handlers.Patient,
		doctorHandler:         handlers.Doctor,
		billingHandler:        handlers.Billing,
		medicationHandler:     handlers.Medication,
		roleHandler:           handlers.Role,
		staffHandler:          handlers.Staff,
		specializationHandler: handlers.Specialization,
		auditLogHandler:       handlers.AuditLog,
		patientAdminHandler:   handlers.PatientAdmin,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
		metricsMiddleware:     metricsMiddleware,
		metricsHandler:        metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Everything below requires a valid access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Appointments. Ownership and visibility are checked per appointment.
	protected.HandleFunc("/appointments", r.patientHandler.BookAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/mine", r.patientHandler.GetMyAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.patientHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.patientHandler.DeleteAppointment).Methods(http.MethodDelete)
	protected.HandleFunc("/appointments/{id}/cancel", r.patientHandler.CancelAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/prescriptions", r.patientHandler.GetPrescriptions).Methods(http.MethodGet)
	protected.HandleFunc("/specializations", r.specializationHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)

	// Doctor routes
	doctor := protected.PathPrefix("/doctor").Subrouter()
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments", r.doctorHandler.GetAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/clinical", r.doctorHandler.UpdateClinicalRecord).Methods(http.MethodPut)
	doctor.HandleFunc("/appointments/{id}/prescriptions", r.doctorHandler.CreatePrescription).Methods(http.MethodPost)

	// Cashier routes
	billing := protected.PathPrefix("/billing").Subrouter()
	billing.Use(middleware.RequirePermission(entity.PermissionAcceptPayment))
	billing.HandleFunc("/appointments", r.billingHandler.GetAwaitingPayment).Methods(http.MethodGet)
	billing.HandleFunc("/appointments/{id}/payment", r.billingHandler.ProcessPayment).Methods(http.MethodPost)
	billing.HandleFunc("/prescriptions", r.billingHandler.GetPrescriptions).Methods(http.MethodGet)
	billing.HandleFunc("/prescriptions/{id}", r.billingHandler.UpdatePrescriptionBilling).Methods(http.MethodPut)
	billing.HandleFunc("/dashboard", r.billingHandler.Dashboard).Methods(http.MethodGet)

	// Pharmacy routes; each operation checks its own permission
	pharmacy := protected.NewRoute().Subrouter()
	pharmacy.Use(middleware.RequirePermission(
		entity.PermissionViewMeds,
		entity.PermissionCreateMeds,
		entity.PermissionEditMeds,
		entity.PermissionDeleteMeds,
	))
	pharmacy.HandleFunc("/medications", r.medicationHandler.Create).Methods(http.MethodPost)
	pharmacy.HandleFunc("/medications", r.medicationHandler.GetAll).Methods(http.MethodGet)
	pharmacy.HandleFunc("/medications/{id}", r.medicationHandler.GetByID).Methods(http.MethodGet)
	pharmacy.HandleFunc("/medications/{id}", r.medicationHandler.Update).Methods(http.MethodPut)
	pharmacy.HandleFunc("/medications/{id}", r.medicationHandler.Delete).Methods(http.MethodDelete)
	pharmacy.HandleFunc("/medications/{id}/restock", r.medicationHandler.Restock).Methods(http.MethodPost)
	pharmacy.HandleFunc("/pharmacy/dashboard", r.medicationHandler.Dashboard).Methods(http.MethodGet)

	// Patient administration; registered ahead of /admin so staff holding the
	// patient permissions are not stopped by the super-admin check
	patients := protected.PathPrefix("/admin/patients").Subrouter()
	patients.Use(middleware.RequirePermission(
		entity.PermissionViewPatients,
		entity.PermissionEditPatients,
		entity.PermissionDeletePatients,
	))
	patients.HandleFunc("", r.patientAdminHandler.List).Methods(http.MethodGet)
	patients.HandleFunc("/stats", r.patientAdminHandler.Stats).Methods(http.MethodGet)
	patients.HandleFunc("/{id}", r.patientAdminHandler.Get).Methods(http.MethodGet)
	patients.HandleFunc("/{id}", r.patientAdminHandler.Update).Methods(http.MethodPut)
	patients.HandleFunc("/{id}", r.patientAdminHandler.Delete).Methods(http.MethodDelete)

	// Admin routes (protected - super-admin only)
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireSuperAdmin)

	admin.HandleFunc("/roles", r.roleHandler.ListRoles).Methods(http.MethodGet)
	admin.HandleFunc("/roles", r.roleHandler.CreateRole).Methods(http.MethodPost)
	admin.HandleFunc("/roles/{id}", r.roleHandler.GetRole).Methods(http.MethodGet)
	admin.HandleFunc("/roles/{id}", r.roleHandler.UpdateRole).Methods(http.MethodPut)
	admin.HandleFunc("/roles/{id}", r.roleHandler.DeleteRole).Methods(http.MethodDelete)
	admin.HandleFunc("/roles/{id}/permissions", r.roleHandler.SyncPermissions).Methods(http.MethodPut)
	admin.HandleFunc("/permissions", r.roleHandler.ListPermissions).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/roles", r.roleHandler.AssignRole).Methods(http.MethodPost)

	admin.HandleFunc("/specializations", r.specializationHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/specializations/{id}", r.specializationHandler.Update).Methods(http.MethodPut)
	admin.HandleFunc("/specializations/{id}", r.specializationHandler.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/staff", r.staffHandler.CreateStaff).Methods(http.MethodPost)
	admin.HandleFunc("/staff", r.staffHandler.ListStaff).Methods(http.MethodGet)
	admin.HandleFunc("/staff/{id}", r.staffHandler.DeleteStaff).Methods(http.MethodDelete)
	admin.HandleFunc("/staff/{id}/specializations", r.staffHandler.SyncSpecializations).Methods(http.MethodPut)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests need a matching route for the middleware to run
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(r.metricsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
