// Importer ingests a Telegram channel history export file from the command
// line, bypassing the HTTP upload path. Useful for the initial backfill of a
// large channel.
package main

import (
	"flag"
	"io/ioutil"

	"github.com/tgportal/tgportal/collector"
	"github.com/tgportal/tgportal/store"
	"github.com/tgportal/tgportal/utils"
	"github.com/tgportal/tgportal/utils/dotenv"
	Logger "github.com/tgportal/tgportal/utils/log"
)

var exportPath = flag.String("export", "", "path to the Telegram export JSON file")

func main() {
	flag.Parse()
	if *exportPath == "" {
		Logger.Log.Fatal("missing required flag: -export")
	}

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	Logger.InitLogger("importer")

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("cannot connect to DB: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	data, err := ioutil.ReadFile(*exportPath)
	if err != nil {
		Logger.Log.Fatal("cannot read export file: ", err)
	}
	msgs, err := collector.ParseExport(data)
	if err != nil {
		Logger.Log.Fatal("cannot parse export file: ", err)
	}

	pipeline := collector.NewPipeline(store.New(db))
	result := pipeline.IngestBatch(msgs)
	Logger.Log.Info("import finished, created: ", result.Created, " skipped: ", result.Skipped)
}
