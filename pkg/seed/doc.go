// Package seed loads reference data (permissions, menus, modules, groups,
// users and grants) from a YAML file.
//
// # Basic Usage
//
//	store := seed.NewGormStore(db)
//	result, err := seed.NewLoader(store).LoadFromReader(ctx, file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Loaded %d grants\n", result.Grants)
//
// Rows are upserted by natural key inside one transaction, so loading the
// same file twice leaves the database unchanged. Use WithDryRun(true) to
// check a file against the database without committing.
package seed
