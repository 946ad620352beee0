// Package db opens the GORM handle used by the console server and rbacctl.
//
// The connection string comes from Config.URL, falling back to DATABASE_URL.
// SQL statements are logged only when LogLevel is "debug".
//
//	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
//	if err != nil {
//	    return err
//	}
//	if err := db.Ping(ctx, database, 5*time.Second); err != nil {
//	    return err
//	}
package db
