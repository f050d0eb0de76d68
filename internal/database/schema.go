// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package database

import "strings"

// referenceSchema is the MySQL layout the auth layer expects. {p} is the
// table prefix. Warden does not migrate schemas; operators apply this once.
const referenceSchema = "" +
	"CREATE TABLE IF NOT EXISTS `{p}users` (\n" +
	"  `id` INT NOT NULL AUTO_INCREMENT,\n" +
	"  `username` VARCHAR(64) NOT NULL,\n" +
	"  `password_hash` VARCHAR(72) NOT NULL,\n" +
	"  `is_root` ENUM('Y','N') NOT NULL DEFAULT 'N',\n" +
	"  `role_id` INT NOT NULL DEFAULT 0,\n" +
	"  `status` ENUM('Y','N') NOT NULL DEFAULT 'Y',\n" +
	"  `last_ip` VARCHAR(45) NOT NULL DEFAULT '',\n" +
	"  `last_login_at` DATETIME NULL,\n" +
	"  `created_at` DATETIME NOT NULL,\n" +
	"  `updated_at` DATETIME NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  UNIQUE KEY `username` (`username`),\n" +
	"  KEY `role_id` (`role_id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE IF NOT EXISTS `{p}roles` (\n" +
	"  `id` INT NOT NULL AUTO_INCREMENT,\n" +
	"  `group_id` INT NOT NULL DEFAULT 0,\n" +
	"  `name` VARCHAR(64) NOT NULL,\n" +
	"  `display_name` VARCHAR(64) NOT NULL DEFAULT '',\n" +
	"  `created_at` DATETIME NOT NULL,\n" +
	"  `updated_at` DATETIME NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  UNIQUE KEY `name` (`name`),\n" +
	"  KEY `group_id` (`group_id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE IF NOT EXISTS `{p}groups` (\n" +
	"  `id` INT NOT NULL AUTO_INCREMENT,\n" +
	"  `name` VARCHAR(64) NOT NULL,\n" +
	"  `display_name` VARCHAR(64) NOT NULL DEFAULT '',\n" +
	"  `created_at` DATETIME NOT NULL,\n" +
	"  `updated_at` DATETIME NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  UNIQUE KEY `name` (`name`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE IF NOT EXISTS `{p}modules` (\n" +
	"  `id` INT NOT NULL AUTO_INCREMENT,\n" +
	"  `name` VARCHAR(64) NOT NULL,\n" +
	"  `display_name` VARCHAR(64) NOT NULL DEFAULT '',\n" +
	"  `parent_id` INT NOT NULL DEFAULT 0,\n" +
	"  `created_at` DATETIME NOT NULL,\n" +
	"  `updated_at` DATETIME NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  UNIQUE KEY `name` (`name`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE IF NOT EXISTS `{p}role_modules` (\n" +
	"  `role_id` INT NOT NULL,\n" +
	"  `module_id` INT NOT NULL,\n" +
	"  PRIMARY KEY (`role_id`, `module_id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE IF NOT EXISTS `{p}failed_logins` (\n" +
	"  `ip` VARCHAR(45) NOT NULL,\n" +
	"  `username` VARCHAR(64) NOT NULL,\n" +
	"  `count` INT NOT NULL DEFAULT 1,\n" +
	"  `last_attempt_time` BIGINT NOT NULL,\n" +
	"  PRIMARY KEY (`ip`, `username`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n"

// ReferenceSchema returns the MySQL DDL for the auth tables, one statement
// per element, with prefix applied to every table name.
func ReferenceSchema(prefix string) []string {
	ddl := strings.ReplaceAll(referenceSchema, "{p}", prefix)
	var stmts []string
	for _, s := range strings.Split(ddl, ";\n") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
