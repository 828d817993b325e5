package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"fithub-admin/internal/factory"
	"fithub-admin/internal/service"
	"fithub-admin/internal/util"
)

// Seeds the first administrator account. Admin accounts are provisioned,
// never self-registered, so a fresh deployment runs this once before the
// panel is usable.
func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "initial password (required)")
	firstName := flag.String("first-name", "Super", "first name")
	lastName := flag.String("last-name", "Admin", "last name")
	phone := flag.String("phone", "", "phone number, optional")
	role := flag.String("role", "", "admin role, defaults to SUPER_ADMIN")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := f.ServiceFactory().AdminService().ProvisionAdmin(ctx, service.ProvisionAdminInput{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
		Role:      *role,
	})
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			util.Info("Admin already exists, nothing to do", util.String("email", *email))
			return
		}
		util.Fatal("Failed to provision admin", util.ErrorField(err))
	}

	util.Info("Admin provisioned",
		util.String("admin_id", admin.AdminID),
		util.String("email", admin.Email),
		util.String("role", admin.Role),
	)
}
