package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"mrikspace/pkg/acquisition"
	"mrikspace/pkg/config"
	"mrikspace/pkg/nufft"
	"mrikspace/pkg/trajectory"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "mrikspace.yaml", "Path to YAML configuration file")
	geometry := flag.String("geometry", "cartesian", "Trajectory geometry: cartesian, radial or spiral")
	size := flag.Int("size", 64, "Encoding matrix size (profiles and samples per profile)")
	numEchoes := flag.Int("echoes", 1, "Number of echoes/contrasts")
	numCoils := flag.Int("coils", 4, "Number of receive coils")
	accel := flag.Int("accel", 1, "Undersampling acceleration factor (Cartesian only)")
	cropTo := flag.Int("crop", 0, "Optional target encoding size for a k-space crop (0 = no crop)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *size < 2 || *numEchoes < 1 || *numCoils < 1 || *accel < 1 {
		flag.Usage()
		os.Exit(1)
	}

	fmt.Println("================================")
	fmt.Println("MRIKSPACE ACQUISITION MODEL DEMO")
	fmt.Println("================================")

	// Build one trajectory per echo
	trajs := make([]trajectory.Trajectory, *numEchoes)
	for e := range trajs {
		te := 5e-3 * float64(e+1)
		switch *geometry {
		case "cartesian":
			trajs[e] = trajectory.NewCartesian(*size, *size,
				trajectory.WithEchoTime(te), trajectory.WithAcqTimePerProfile(1e-3))
		case "radial":
			trajs[e] = trajectory.NewRadial(*size, *size,
				trajectory.WithEchoTime(te), trajectory.WithAcqTimePerProfile(1e-3))
		case "spiral":
			trajs[e] = trajectory.NewSpiral(1, (*size)*(*size),
				trajectory.WithEchoTime(te), trajectory.WithAcqTimePerProfile(1e-3))
		default:
			log.Fatalf("Unknown geometry %q", *geometry)
		}
	}

	// Retain every accel-th profile of each echo
	opts := []acquisition.Option{acquisition.WithEncodingSize(*size, *size, 1)}
	entries := acquisition.ZeroFilled(trajs, *numCoils, 1, 1)
	if *accel > 1 && *geometry == "cartesian" {
		indices := make([][]int, *numEchoes)
		for e, tr := range trajs {
			sps := tr.NumSamplesPerProfile()
			for p := 0; p < tr.NumProfiles(); p += *accel {
				for i := 0; i < sps; i++ {
					indices[e] = append(indices[e], p*sps+i)
				}
			}
			entries[e][0][0] = mat.NewCDense(len(indices[e]), *numCoils, nil)
		}
		opts = append(opts, acquisition.WithSubsampleIndices(indices))
	}

	acq, err := acquisition.New(trajs, entries, opts...)
	if err != nil {
		log.Fatalf("Failed to build acquisition: %v", err)
	}

	fmt.Printf("Echoes: %d  Coils: %d  Slices: %d  Reps: %d\n",
		acq.NumEchoes, acq.NumCoils, acq.NumSlices, acq.NumReps)
	for e := 0; e < acq.NumEchoes; e++ {
		fmt.Printf("Echo %d: %s trajectory, %d nodes, %d acquired\n",
			e, acq.Traj[e].Name(), acq.Traj[e].NumNodes(), len(acq.SubsampleIndices[e]))
	}

	// Normalize the undersampling bookkeeping
	fmt.Println("Step 1: Normalizing undersampled trajectories...")
	norm, err := acquisition.ConvertUndersampledData(acq)
	if err != nil {
		log.Fatalf("Failed to normalize undersampling: %v", err)
	}

	// Optional k-space crop
	if *cropTo > 0 {
		fmt.Printf("Step 2: Cropping k-space to %dx%d...\n", *cropTo, *cropTo)
		norm, err = acquisition.ChangeEncodingSize2D(norm, [2]int{*cropTo, *cropTo})
		if err != nil {
			log.Fatalf("Failed to change encoding size: %v", err)
		}
		for e := 0; e < norm.NumEchoes; e++ {
			fmt.Printf("Echo %d: %d nodes after crop\n", e, norm.Traj[e].NumNodes())
		}
	}

	// Density compensation
	fmt.Println("Step 3: Estimating sampling density...")
	var est acquisition.DensityEstimator
	switch cfg.Density.Estimator {
	case "neighbors":
		est = &nufft.NeighborEstimator{Neighbors: cfg.Density.Neighbors}
	default:
		est = &nufft.GriddingEstimator{
			OversamplingFactor: cfg.Density.OversamplingFactor,
			KernelHalfWidth:    cfg.Density.KernelHalfWidth,
			Workers:            cfg.Processing.NumCores,
		}
	}
	shape := []int{norm.EncodingSize[0], norm.EncodingSize[1]}
	weights, err := acquisition.SamplingDensity(norm, shape, est)
	if err != nil {
		log.Fatalf("Failed to estimate sampling density: %v", err)
	}

	for e, w := range weights {
		mean := stat.Mean(w, nil)
		sd := stat.StdDev(w, nil)
		fmt.Printf("Echo %d: %d weights, mean=%.6f stddev=%.6f\n", e, len(w), mean, sd)
	}

	if cfg.Output.Verbose {
		fmt.Println("Done.")
	}
}
