package directory

import "context"

// SeedDevTenants provisions a hospital and a doctor so subdomain routing
// works out of the box in development. Ignores conflicts so restarts with a
// persistent store stay clean.
func SeedDevTenants(ctx context.Context, svc *Service) {
	_, _ = svc.ProvisionHospital(ctx, "General Hospital", "general")
	_, _ = svc.ProvisionDoctor(ctx, "Dana Rivera", "Cardiology", "")
}
