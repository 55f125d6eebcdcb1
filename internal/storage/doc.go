/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage keeps the glossary of terms that cards are generated from.
// The store runs on the pure-Go SQLite driver by default and on Postgres via
// pgx; schema files are embedded per dialect and applied on open.
// It also imports term lists from CSV and JSON files with an explicit
// merge policy for duplicates.
package storage
